package server

import (
	"context"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/solatis/prospector/internal/core/api"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "prospector.filter.v1.FilterAPI"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// FilterAPI is implemented by *api.FilterService. Every method travels as a
// google.protobuf.Struct on the wire holding the JSON form of its request
// and response types.
type FilterAPI interface {
	FilterLeads(context.Context, *api.FilterRequest) (*api.FilterLeadsResponse, error)
	FilterCompanies(context.Context, *api.FilterRequest) (*api.FilterCompaniesResponse, error)
	Explain(context.Context, *api.ExplainRequest) (*api.ExplainResponse, error)
	FieldCatalog(context.Context, *api.FieldCatalogRequest) (*api.FieldCatalogResponse, error)
	SavePreset(context.Context, *api.SavePresetRequest) (*api.PresetResponse, error)
	ListPresets(context.Context, *api.ListPresetsRequest) (*api.ListPresetsResponse, error)
	DeletePreset(context.Context, *api.DeletePresetRequest) (*api.DeletePresetResponse, error)
	ImportLeads(context.Context, *api.ImportLeadsRequest) (*api.ImportLeadsResponse, error)
}

// ServiceDesc registers FilterAPI with a grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FilterAPI)(nil),
	Methods: []grpc.MethodDesc{
		method("FilterLeads", FilterAPI.FilterLeads),
		method("FilterCompanies", FilterAPI.FilterCompanies),
		method("Explain", FilterAPI.Explain),
		method("FieldCatalog", FilterAPI.FieldCatalog),
		method("SavePreset", FilterAPI.SavePreset),
		method("ListPresets", FilterAPI.ListPresets),
		method("DeletePreset", FilterAPI.DeletePreset),
		method("ImportLeads", FilterAPI.ImportLeads),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "prospector/filter/v1/filter_api.proto",
}

// method adapts a typed FilterAPI method to a unary handler that decodes the
// request Struct, runs interceptors and encodes the response.
func method[Req, Resp any](name string, call func(FilterAPI, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			invoke := func(ctx context.Context, req any) (any, error) {
				r := new(Req)
				if err := decodeStruct(req.(*structpb.Struct), r); err != nil {
					return nil, status.Errorf(codes.InvalidArgument, "malformed %s request: %v", name, err)
				}
				resp, err := call(srv.(FilterAPI), ctx, r)
				if err != nil {
					return nil, err
				}
				out, err := encodeStruct(resp)
				if err != nil {
					return nil, status.Errorf(codes.Internal, "failed to encode %s response: %v", name, err)
				}
				return out, nil
			}
			if interceptor == nil {
				return invoke(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, invoke)
		},
	}
}

// decodeStruct converts a Struct to dst through its JSON form.
func decodeStruct(in *structpb.Struct, dst any) error {
	data, err := protojson.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

// encodeStruct converts v to a Struct through its JSON form. v must encode
// as a JSON object.
func encodeStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %w", err)
	}
	return out, nil
}
