package client

import (
	"net/url"
	"strconv"
	"time"
)

// Company is a directory record as returned by the gateway.
type Company struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Industry  string    `json:"industry"`
	Location  string    `json:"location"`
	Size      *int      `json:"size,omitempty"`
	Founded   *int      `json:"founded,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CompanyInput is the body for Create and Update. Nil fields are omitted,
// so an Update only touches what is set.
type CompanyInput struct {
	Name     *string `json:"name,omitempty"`
	Industry *string `json:"industry,omitempty"`
	Location *string `json:"location,omitempty"`
	Size     *int    `json:"size,omitempty"`
	Founded  *int    `json:"founded,omitempty"`
}

// ListOptions narrows List. Zero values are not sent.
type ListOptions struct {
	Search  string
	MinSize *int
	MaxSize *int
}

func (o ListOptions) values() url.Values {
	q := url.Values{}
	if o.Search != "" {
		q.Set("search", o.Search)
	}
	if o.MinSize != nil {
		q.Set("minSize", strconv.Itoa(*o.MinSize))
	}
	if o.MaxSize != nil {
		q.Set("maxSize", strconv.Itoa(*o.MaxSize))
	}
	return q
}

type createResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Data    *Company `json:"data"`
}
