package iris

import "context"

// Product is an item in the acting user's catalogue.
type Product struct {
	model
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       Amount `json:"price"`
	Currency    string `json:"currency,omitempty"`
	SKU         string `json:"sku,omitempty"`
	Active      bool   `json:"active"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// ProductRequest creates or updates a product. Zero fields are not sent.
type ProductRequest struct {
	Name        string
	Description string
	Price       Amount
	Currency    string
	SKU         string
	Active      *bool
}

func (r ProductRequest) params() params {
	return params{}.
		set("name", r.Name).
		set("description", r.Description).
		set("price", r.Price).
		set("currency", r.Currency).
		set("sku", r.SKU).
		set("active", r.Active)
}

// ProductsResource manages the product catalogue.
type ProductsResource struct {
	resource
}

var productPaths = []string{"data.product", "product", "data"}

// List returns one page of products.
func (r *ProductsResource) List(ctx context.Context, opts *ListOptions) (*Page[Product], error) {
	uid, err := r.cfg.RequireUserID()
	if err != nil {
		return nil, err
	}
	p := opts.params()
	p["user_id"] = uid
	body, err := r.getObject(ctx, "/api/v1/products", p.query())
	if err != nil {
		return nil, err
	}
	return decodePage[Product](body, "data.products", "products", "data")
}

// Get fetches one product.
func (r *ProductsResource) Get(ctx context.Context, id string) (*Product, error) {
	if err := requireArg("product id", id); err != nil {
		return nil, err
	}
	body, err := r.getObject(ctx, "/api/v1/products/"+esc(id), nil)
	if err != nil {
		return nil, err
	}
	return decodeModel[Product](extractPayload(body, productPaths...))
}

// Create adds a product.
func (r *ProductsResource) Create(ctx context.Context, req ProductRequest) (*Product, error) {
	uid, err := r.cfg.RequireUserID()
	if err != nil {
		return nil, err
	}
	if err := requireArg("product name", req.Name); err != nil {
		return nil, err
	}
	p := req.params()
	p["user_id"] = uid
	body, err := r.postObject(ctx, "/api/v1/products", p)
	if err != nil {
		return nil, err
	}
	return decodeModel[Product](extractPayload(body, productPaths...))
}

// Update replaces the given product fields.
func (r *ProductsResource) Update(ctx context.Context, id string, req ProductRequest) (*Product, error) {
	if err := requireArg("product id", id); err != nil {
		return nil, err
	}
	body, err := r.putObject(ctx, "/api/v1/products/"+esc(id), req.params())
	if err != nil {
		return nil, err
	}
	return decodeModel[Product](extractPayload(body, productPaths...))
}
