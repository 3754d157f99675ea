package iris

import (
	"context"
	"strings"
)

// Bloq is a knowledge container that groups documents and agents.
type Bloq struct {
	model
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Visibility  string `json:"visibility,omitempty"`
	FileCount   int    `json:"file_count,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// IngestionJob tracks the processing of files added to a bloq.
type IngestionJob struct {
	model
	ID          ID      `json:"id"`
	BloqID      ID      `json:"bloq_id,omitempty"`
	Status      string  `json:"status"`
	Filename    string  `json:"filename,omitempty"`
	Progress    float64 `json:"progress,omitempty"`
	Error       string  `json:"error,omitempty"`
	CreatedAt   string  `json:"created_at,omitempty"`
	CompletedAt string  `json:"completed_at,omitempty"`
}

// IsDone reports a job that finished successfully.
func (j *IngestionJob) IsDone() bool {
	switch strings.ToLower(j.Status) {
	case "completed", "done", "succeeded":
		return true
	}
	return false
}

func (j *IngestionJob) IsFailed() bool { return strings.EqualFold(j.Status, "failed") }

// BloqRequest creates a bloq.
type BloqRequest struct {
	Name        string
	Description string
	Visibility  string
}

// IngestionJobFilter narrows Bloqs.IngestionJobs.
type IngestionJobFilter struct {
	Status string
	Limit  int
	Page   int
}

// BloqsResource manages bloqs and their ingestion.
type BloqsResource struct {
	resource
}

var bloqPaths = []string{"data.bloq", "bloq", "data"}

// List returns the acting user's bloqs.
func (r *BloqsResource) List(ctx context.Context, opts *ListOptions) (*Page[Bloq], error) {
	uid, err := r.cfg.RequireUserID()
	if err != nil {
		return nil, err
	}
	body, err := r.getObject(ctx, userPath(uid, "/bloqs"), opts.params().query())
	if err != nil {
		return nil, err
	}
	return decodePage[Bloq](body, "data.bloqs", "bloqs", "data")
}

// Get fetches one bloq.
func (r *BloqsResource) Get(ctx context.Context, id string) (*Bloq, error) {
	if err := requireArg("bloq id", id); err != nil {
		return nil, err
	}
	body, err := r.getObject(ctx, "/api/v1/bloqs/"+esc(id), nil)
	if err != nil {
		return nil, err
	}
	return decodeModel[Bloq](extractPayload(body, bloqPaths...))
}

// Create adds a bloq for the acting user.
func (r *BloqsResource) Create(ctx context.Context, req BloqRequest) (*Bloq, error) {
	uid, err := r.cfg.RequireUserID()
	if err != nil {
		return nil, err
	}
	if err := requireArg("bloq name", req.Name); err != nil {
		return nil, err
	}
	p := params{"name": req.Name}
	p.set("description", req.Description).set("visibility", req.Visibility)
	body, err := r.postObject(ctx, userPath(uid, "/bloqs"), p)
	if err != nil {
		return nil, err
	}
	return decodeModel[Bloq](extractPayload(body, bloqPaths...))
}

// IngestionJobs lists the ingestion jobs of a bloq.
func (r *BloqsResource) IngestionJobs(ctx context.Context, bloqID string, filter *IngestionJobFilter) ([]IngestionJob, error) {
	if err := requireArg("bloq id", bloqID); err != nil {
		return nil, err
	}
	p := params{}
	if filter != nil {
		p.set("status", filter.Status).set("limit", filter.Limit).set("page", filter.Page)
	}
	body, err := r.getObject(ctx, "/api/v1/bloqs/"+esc(bloqID)+"/ingestion-jobs", p.query())
	if err != nil {
		return nil, err
	}
	return decodeModels[IngestionJob](extractList(body, "data.jobs", "jobs", "data"))
}

// Upload adds a file to a bloq and returns the ingestion job it started.
func (r *BloqsResource) Upload(ctx context.Context, bloqID, path string, metadata map[string]string) (*IngestionJob, error) {
	if err := requireArg("bloq id", bloqID); err != nil {
		return nil, err
	}
	if err := requireArg("file path", path); err != nil {
		return nil, err
	}
	var body map[string]any
	if err := r.http.Upload(ctx, "/api/v1/bloqs/"+esc(bloqID)+"/files", path, "file", metadata, &body); err != nil {
		return nil, err
	}
	return decodeModel[IngestionJob](extractPayload(body, "data.job", "job", "data"))
}
