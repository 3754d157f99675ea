package iris

import (
	"context"
	"fmt"
	"strconv"
)

// SearchRequest is a semantic search over the acting user's knowledge base.
type SearchRequest struct {
	Query    string
	BloqID   ID
	TopK     int
	MinScore float64
	Filters  map[string]any
}

// SearchResult is one matched chunk.
type SearchResult struct {
	model
	ID         ID             `json:"id,omitempty"`
	DocumentID ID             `json:"document_id,omitempty"`
	Content    string         `json:"content"`
	Score      float64        `json:"score"`
	Source     string         `json:"source,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// IsRelevant reports whether the result scored at least threshold.
func (s *SearchResult) IsRelevant(threshold float64) bool { return s.Score >= threshold }

// Document is an indexed knowledge-base document.
type Document struct {
	model
	ID        ID     `json:"id"`
	Title     string `json:"title,omitempty"`
	Filename  string `json:"filename,omitempty"`
	Status    string `json:"status,omitempty"`
	Chunks    int    `json:"chunks,omitempty"`
	BloqID    ID     `json:"bloq_id,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// UploadOptions tags an uploaded document.
type UploadOptions struct {
	Title    string
	BloqID   ID
	Metadata map[string]string
}

// RAGResource searches and feeds the knowledge base.
type RAGResource struct {
	resource
}

// Search runs a semantic query. TopK defaults to 5.
func (r *RAGResource) Search(ctx context.Context, req SearchRequest) ([]SearchResult, error) {
	uid, err := r.cfg.RequireUserID()
	if err != nil {
		return nil, err
	}
	if err := requireArg("query", req.Query); err != nil {
		return nil, err
	}
	if req.TopK <= 0 {
		req.TopK = 5
	}
	p := params{"query": req.Query, "top_k": req.TopK}
	p.set("bloq_id", req.BloqID).
		set("min_score", req.MinScore).
		set("filters", req.Filters)
	body, err := r.postObject(ctx, userPath(uid, "/rag/search"), p)
	if err != nil {
		return nil, err
	}
	return decodeModels[SearchResult](extractList(body, "data.results", "results", "data"))
}

// Upload indexes the file at path.
func (r *RAGResource) Upload(ctx context.Context, path string, opts *UploadOptions) (*Document, error) {
	uid, err := r.cfg.RequireUserID()
	if err != nil {
		return nil, err
	}
	if err := requireArg("file path", path); err != nil {
		return nil, err
	}
	fields := map[string]string{"user_id": strconv.Itoa(uid)}
	if opts != nil {
		if opts.Title != "" {
			fields["title"] = opts.Title
		}
		if opts.BloqID != "" {
			fields["bloq_id"] = opts.BloqID.String()
		}
		for k, v := range opts.Metadata {
			fields[fmt.Sprintf("metadata[%s]", k)] = v
		}
	}
	var body map[string]any
	if err := r.http.Upload(ctx, userPath(uid, "/rag/documents"), path, "file", fields, &body); err != nil {
		return nil, err
	}
	return decodeModel[Document](extractPayload(body, "data.document", "document", "data"))
}

// DeleteDocument removes a document from the index.
func (r *RAGResource) DeleteDocument(ctx context.Context, id string) error {
	uid, err := r.cfg.RequireUserID()
	if err != nil {
		return err
	}
	if err := requireArg("document id", id); err != nil {
		return err
	}
	return r.http.Delete(ctx, userPath(uid, "/rag/documents/%s", esc(id)), nil, nil)
}
