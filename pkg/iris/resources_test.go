package iris

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeads_ListSendsUserAndReadsMeta(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/leads", r.URL.Path)
		assert.Equal(t, "42", r.URL.Query().Get("user_id"))
		assert.Equal(t, "new", r.URL.Query().Get("status"))
		assert.Empty(t, r.URL.Query().Get("search"))
		writeJSON(t, w, http.StatusOK, map[string]any{
			"data": []any{
				map[string]any{"id": 1, "name": "Ada", "email": "ada@example.com", "score": 88},
				map[string]any{"id": "2", "name": "Grace", "status": "won"},
			},
			"meta": map[string]any{"current_page": 1, "last_page": 3, "per_page": 2, "total": 6},
		})
	}, WithUserID(42))

	page, err := c.Leads.List(context.Background(), &LeadFilter{Status: "new"})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)

	ada := page.Items[0]
	assert.Equal(t, ID("1"), ada.ID)
	assert.True(t, ada.HasEmail())
	assert.Equal(t, 88, ada.Attributes().Int("score"))
	assert.True(t, page.Items[1].IsConverted())
	assert.False(t, page.Items[1].HasEmail())

	assert.Equal(t, 6, page.Meta.Total)
	assert.True(t, page.Meta.HasMore())
}

func TestLeads_UpdateUsesPatch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/v1/leads/5", r.URL.Path)
		body := decodeBody(t, r)
		assert.Equal(t, map[string]any{"status": "qualified"}, body)
		writeJSON(t, w, http.StatusOK, map[string]any{"data": map[string]any{"id": 5, "status": "qualified"}})
	})

	lead, err := c.Leads.Update(context.Background(), "5", LeadRequest{Status: "qualified"})
	require.NoError(t, err)
	assert.Equal(t, "qualified", lead.Status)
}

func TestLeads_SendDeliverablePreviewsFirst(t *testing.T) {
	var paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		body := decodeBody(t, r)
		switch r.URL.Path {
		case "/api/v1/leads/5/deliverables/preview":
			writeJSON(t, w, http.StatusOK, map[string]any{"data": map[string]any{"id": "p1", "subject": "Proposal"}})
		case "/api/v1/leads/5/deliverables/send":
			assert.Equal(t, "p1", body["preview_id"])
			writeJSON(t, w, http.StatusOK, map[string]any{"data": map[string]any{"sent": true, "message_id": "m1"}})
		}
	})

	res, err := c.Leads.SendDeliverable(context.Background(), "5", DeliverableRequest{Type: "proposal"})
	require.NoError(t, err)
	assert.True(t, res.Sent)
	require.NotNil(t, res.Preview)
	assert.Equal(t, "Proposal", res.Preview.Subject)
	assert.Equal(t, []string{"/api/v1/leads/5/deliverables/preview", "/api/v1/leads/5/deliverables/send"}, paths)
}

func TestLeads_SendDeliverableSkipPreview(t *testing.T) {
	var paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		writeJSON(t, w, http.StatusOK, map[string]any{"data": map[string]any{"sent": true}})
	})

	res, err := c.Leads.SendDeliverable(context.Background(), "5", DeliverableRequest{Type: "email", SkipPreview: true})
	require.NoError(t, err)
	assert.Nil(t, res.Preview)
	assert.Equal(t, []string{"/api/v1/leads/5/deliverables/send"}, paths)
}

func TestProducts_GetPayloadFallbacks(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
	}{
		{"data.product", map[string]any{"data": map[string]any{"product": map[string]any{"id": 1, "name": "Widget", "price": "19.90"}}}},
		{"product", map[string]any{"product": map[string]any{"id": 1, "name": "Widget", "price": 19.9}}},
		{"data", map[string]any{"data": map[string]any{"id": 1, "name": "Widget", "price": "19.9"}}},
		{"bare", map[string]any{"id": 1, "name": "Widget", "price": 19.9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(t, w, http.StatusOK, tt.body)
			})
			p, err := c.Products.Get(context.Background(), "1")
			require.NoError(t, err)
			assert.Equal(t, "Widget", p.Name)
			assert.Equal(t, "19.90", p.Price.String())
		})
	}
}

func TestProducts_UpdateUsesPut(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		body := decodeBody(t, r)
		assert.Equal(t, false, body["active"])
		writeJSON(t, w, http.StatusOK, map[string]any{"data": map[string]any{"id": 3, "active": false}})
	})

	inactive := false
	p, err := c.Products.Update(context.Background(), "3", ProductRequest{Active: &inactive})
	require.NoError(t, err)
	assert.False(t, p.Active)
}

func TestProducts_GetLooseScalars(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"data": map[string]any{
			"id": 1, "active": 1, "sku": 1001, "price": "n/a",
		}})
	})

	p, err := c.Products.Get(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, ID("1"), p.ID)
	assert.True(t, p.Active)
	assert.Equal(t, "1001", p.SKU)
	assert.Equal(t, Amount(0), p.Price)
	assert.Equal(t, "n/a", p.Attributes().String("price"))
}

func TestProducts_GetKeepsUnusableFieldInAttributes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"data": map[string]any{
			"id": 2, "name": "Widget", "active": map[string]any{"since": "2024"},
		}})
	})

	p, err := c.Products.Get(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, "Widget", p.Name)
	assert.False(t, p.Active)
	assert.NotNil(t, p.Attributes()["active"])
}

(t *testing.T) {
	var keys []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		keys = append(keys, r.Header.Get("Idempotency-Key"))
		body := decodeBody(t, r)
		assert.Equal(t, "usd", body["currency"])
		writeJSON(t, w, http.StatusOK, map[string]any{"data": map[string]any{"id": "cs_1", "url": "https://pay.example.com/cs_1"}})
	}, WithUserID(42))

	ctx := context.Background()
	co, err := c.Payments.CreateCheckout(ctx, CheckoutRequest{Amount: 25, IdempotencyKey: "order-1"})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/cs_1", co.URL)

	_, err = c.Payments.CreateCheckout(ctx, CheckoutRequest{Amount: 25})
	require.NoError(t, err)

	require.Len(t, keys, 2)
	assert.Equal(t, "order-1", keys[0])
	assert.Len(t, keys[1], 36)
}

func TestPayments_CheckoutNeedsAmountOrProduct(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}, WithUserID(42))

	_, err := c.Payments.CreateCheckout(context.Background(), CheckoutRequest{})
	require.Error(t, err)
}

func TestSchedules_CreateValidatesCron(t *testing.T) {
	var created map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		created = decodeBody(t, r)
		writeJSON(t, w, http.StatusOK, map[string]any{"data": map[string]any{"id": 1, "cron": created["cron"]}})
	}, WithUserID(42))
	ctx := context.Background()

	_, err := c.Schedules.Create(ctx, ScheduleRequest{Cron: "* * *", Prompt: "report"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want 5 or 6")
	assert.Nil(t, created)

	s, err := c.Schedules.Create(ctx, ScheduleRequest{Cron: " 0  9 * * 1 ", Prompt: "report"})
	require.NoError(t, err)
	assert.Equal(t, "0 9 * * 1", s.Cron)
	assert.True(t, s.IsActive())
}

func TestSocial_PublishValidates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"data": map[string]any{
			"status": "published",
			"results": []any{
				map[string]any{"platform": "linkedin", "status": "published"},
				map[string]any{"platform": "x", "status": "failed", "error": "rate limited"},
			},
		}})
	}, WithUserID(42))
	ctx := context.Background()

	_, err := c.Social.Publish(ctx, PublishRequest{Content: "hi"})
	require.Error(t, err)

	res, err := c.Social.Publish(ctx, PublishRequest{Content: "hi", Platforms: []string{"linkedin", "x"}})
	require.NoError(t, err)
	assert.True(t, res.IsPublished())
	assert.True(t, res.HasError())
	assert.False(t, res.IsScheduled())
}

func TestSocial_PublishNumericPostID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"data": map[string]any{
			"status": "published",
			"results": []any{
				map[string]any{"platform": "linkedin", "status": "published", "post_id": 7012345},
			},
		}})
	}, WithUserID(42))

	res, err := c.Social.Publish(context.Background(), PublishRequest{Content: "hi", Platforms: []string{"linkedin"}})
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.Equal(t, ID("7012345"), res.Results[0].PostID)
}

func TestBloqs_IngestionJobsFilter(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/bloqs/b1/ingestion-jobs", r.URL.Path)
		assert.Equal(t, "failed", r.URL.Query().Get("status"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		writeJSON(t, w, http.StatusOK, map[string]any{"data": map[string]any{"jobs": []any{
			map[string]any{"id": 1, "status": "failed", "error": "bad pdf"},
			"ignored",
		}}})
	})

	jobs, err := c.Bloqs.IngestionJobs(context.Background(), "b1", &IngestionJobFilter{Status: "failed", Limit: 10})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.True(t, jobs[0].IsFailed())
	assert.False(t, jobs[0].IsDone())
}

func TestMarketplace_SkillsWithoutUser(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("user_id"))
		writeJSON(t, w, http.StatusOK, map[string]any{"skills": []any{
			map[string]any{"id": 1, "name": "CRM sync", "price": 0},
			map[string]any{"id": 2, "name": "Voice", "price": "9.99", "installed": true},
		}})
	})

	page, err := c.Marketplace.Skills(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.True(t, page.Items[0].IsFree())
	assert.True(t, page.Items[1].IsInstalled())
	assert.Equal(t, 2, page.Meta.Total)
	assert.False(t, page.Meta.HasMore())
}

func TestMarketplace_SkillsLooseScalars(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"skills": []any{
			map[string]any{"id": "s1", "name": "CRM sync", "installed": "true", "rating": "4.5", "tags": []any{"crm", 2024}},
			map[string]any{"id": "s2", "name": "Voice", "installed": 0, "rating": 3},
		}})
	})

	page, err := c.Marketplace.Skills(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.True(t, page.Items[0].IsInstalled())
	assert.InDelta(t, 4.5, page.Items[0].Rating, 0.001)
	assert.Equal(t, []string{"crm", "2024"}, page.Items[0].Tags)
	assert.False(t, page.Items[1].IsInstalled())
	assert.InDelta(t, 3.0, page.Items[1].Rating, 0.001)
}

func TestPhone_AvailableDefaultsCountry(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "US", r.URL.Query().Get("country"))
		assert.Equal(t, "415", r.URL.Query().Get("area_code"))
		writeJSON(t, w, http.StatusOK, map[string]any{"numbers": []any{
			map[string]any{"phone_number": "+14155550100", "monthly_price": "1.15"},
		}})
	})

	nums, err := c.Phone.Available(context.Background(), AvailableNumbersQuery{AreaCode: "415"})
	require.NoError(t, err)
	require.Len(t, nums, 1)
	assert.Equal(t, "1.15", nums[0].MonthlyPrice.String())
}

func TestRAG_SearchDefaultsTopK(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/users/42/rag/search", r.URL.Path)
		body := decodeBody(t, r)
		assert.Equal(t, float64(5), body["top_k"])
		writeJSON(t, w, http.StatusOK, map[string]any{"data": map[string]any{"results": []any{
			map[string]any{"content": "a", "score": 0.91},
			map[string]any{"content": "b", "score": 0.42},
		}}})
	}, WithUserID(42))

	results, err := c.RAG.Search(context.Background(), SearchRequest{Query: "pricing"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[0].IsRelevant(0.8))
	assert.False(t, results[1].IsRelevant(0.8))
}

func TestUsers_GetDefaultsToActingUser(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/users/42", r.URL.Path)
		writeJSON(t, w, http.StatusOK, map[string]any{"data": map[string]any{"id": 42, "email": "me@example.com"}})
	}, WithUserID(42))

	u, err := c.Users.Get(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, ID("42"), u.ID)
	assert.Equal(t, "me@example.com", u.ToMap()["email"])
}

func TestModel_AttributesAreCopies(t *testing.T) {
	raw := map[string]any{"id": 1, "name": "Ada", "extra": map[string]any{"k": "v"}}
	lead, err := decodeModel[Lead](raw)
	require.NoError(t, err)

	attrs := lead.Attributes()
	attrs["extra"].(map[string]any)["k"] = "changed"
	assert.Equal(t, "v", lead.Attributes()["extra"].(map[string]any)["k"])

	raw["name"] = "changed"
	assert.Equal(t, "Ada", lead.Attributes().String("name"))
}
