package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/solatis/prospector/internal/core/api"
	"github.com/solatis/prospector/internal/core/auth"
)

// Client calls FilterAPI over a gRPC connection.
type Client struct {
	cc     grpc.ClientConnInterface
	apiKey string
}

// NewClient returns a client that sends apiKey with every call.
func NewClient(cc grpc.ClientConnInterface, apiKey string) *Client {
	return &Client{cc: cc, apiKey: apiKey}
}

func invoke[Resp any](ctx context.Context, c *Client, name string, req any) (*Resp, error) {
	in, err := encodeStruct(req)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, auth.MetadataKey, c.apiKey)
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+name, in, out); err != nil {
		return nil, err
	}
	resp := new(Resp)
	if err := decodeStruct(out, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) FilterLeads(ctx context.Context, req *api.FilterRequest) (*api.FilterLeadsResponse, error) {
	return invoke[api.FilterLeadsResponse](ctx, c, "FilterLeads", req)
}

func (c *Client) FilterCompanies(ctx context.Context, req *api.FilterRequest) (*api.FilterCompaniesResponse, error) {
	return invoke[api.FilterCompaniesResponse](ctx, c, "FilterCompanies", req)
}

func (c *Client) Explain(ctx context.Context, req *api.ExplainRequest) (*api.ExplainResponse, error) {
	return invoke[api.ExplainResponse](ctx, c, "Explain", req)
}

func (c *Client) FieldCatalog(ctx context.Context, req *api.FieldCatalogRequest) (*api.FieldCatalogResponse, error) {
	return invoke[api.FieldCatalogResponse](ctx, c, "FieldCatalog", req)
}

func (c *Client) SavePreset(ctx context.Context, req *api.SavePresetRequest) (*api.PresetResponse, error) {
	return invoke[api.PresetResponse](ctx, c, "SavePreset", req)
}

func (c *Client) ListPresets(ctx context.Context, req *api.ListPresetsRequest) (*api.ListPresetsResponse, error) {
	return invoke[api.ListPresetsResponse](ctx, c, "ListPresets", req)
}

func (c *Client) DeletePreset(ctx context.Context, req *api.DeletePresetRequest) (*api.DeletePresetResponse, error) {
	return invoke[api.DeletePresetResponse](ctx, c, "DeletePreset", req)
}

func (c *Client) ImportLeads(ctx context.Context, req *api.ImportLeadsRequest) (*api.ImportLeadsResponse, error) {
	return invoke[api.ImportLeadsResponse](ctx, c, "ImportLeads", req)
}

var _ FilterAPI = (*Client)(nil)
