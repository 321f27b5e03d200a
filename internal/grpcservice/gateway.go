package grpcservice

import (
	"context"
	"net/http"
	"strconv"

	gwruntime "github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	jsoniter "github.com/json-iterator/go"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"go.klb.dev/clipview/internal/rpc"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// route is one HTTP binding of a service method.
type route struct {
	method, pattern string
	call            func(ctx context.Context, r *http.Request, params map[string]string) (any, error)
}

// Gateway returns an HTTP/JSON mux exposing the service. Requests carry the
// same bearer token as gRPC calls.
func (s *Service) Gateway(auth Auth) (*gwruntime.ServeMux, error) {
	mux := gwruntime.NewServeMux()
	for _, rt := range s.routes() {
		call := rt.call
		err := mux.HandlePath(rt.method, rt.pattern, func(w http.ResponseWriter, r *http.Request, params map[string]string) {
			if err := auth.Token(r.Header.Get("Authorization")); err != nil {
				writeError(w, err)
				return
			}
			out, err := call(r.Context(), r, params)
			if err != nil {
				writeError(w, err)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(out)
		})
		if err != nil {
			return nil, err
		}
	}
	return mux, nil
}

func (s *Service) routes() []route {
	return []route{
		{"GET", "/v1/entries", func(ctx context.Context, _ *http.Request, _ map[string]string) (any, error) {
			return s.EntryIDs(ctx, &rpc.Empty{})
		}},
		{"GET", "/v1/entries/{id}", func(ctx context.Context, _ *http.Request, p map[string]string) (any, error) {
			id, err := pathID(p)
			if err != nil {
				return nil, err
			}
			return s.Entry(ctx, &rpc.IDRequest{ID: id})
		}},
		{"DELETE", "/v1/entries/{id}", func(ctx context.Context, _ *http.Request, p map[string]string) (any, error) {
			id, err := pathID(p)
			if err != nil {
				return nil, err
			}
			return s.DeleteItem(ctx, &rpc.IDRequest{ID: id})
		}},
		{"DELETE", "/v1/entries", func(ctx context.Context, _ *http.Request, _ map[string]string) (any, error) {
			return s.DeleteAll(ctx, &rpc.Empty{})
		}},
		{"POST", "/v1/entries/{id}/copy", func(ctx context.Context, _ *http.Request, p map[string]string) (any, error) {
			id, err := pathID(p)
			if err != nil {
				return nil, err
			}
			return s.PushToClipboard(ctx, &rpc.IDRequest{ID: id})
		}},
		{"PUT", "/v1/entries/{id}/pin", func(ctx context.Context, r *http.Request, p map[string]string) (any, error) {
			req := &rpc.PinRequest{}
			if err := decodeBody(r, req); err != nil {
				return nil, err
			}
			id, err := pathID(p)
			if err != nil {
				return nil, err
			}
			req.ID = id
			return s.TogglePin(ctx, req)
		}},
		{"PUT", "/v1/entries/{id}/language", func(ctx context.Context, r *http.Request, p map[string]string) (any, error) {
			req := &rpc.LanguageRequest{}
			if err := decodeBody(r, req); err != nil {
				return nil, err
			}
			id, err := pathID(p)
			if err != nil {
				return nil, err
			}
			req.ID = id
			return s.ForceLanguage(ctx, req)
		}},
		{"POST", "/v1/unpin", func(ctx context.Context, _ *http.Request, _ map[string]string) (any, error) {
			return s.UnpinAll(ctx, &rpc.Empty{})
		}},
		{"GET", "/v1/config", func(ctx context.Context, _ *http.Request, _ map[string]string) (any, error) {
			return s.ConfigValue(ctx, &rpc.ConfigRequest{})
		}},
		{"GET", "/v1/config/{property}", func(ctx context.Context, _ *http.Request, p map[string]string) (any, error) {
			return s.ConfigValue(ctx, &rpc.ConfigRequest{Property: p["property"]})
		}},
		{"POST", "/v1/events", func(ctx context.Context, r *http.Request, _ map[string]string) (any, error) {
			req := &rpc.Event{}
			if err := decodeBody(r, req); err != nil {
				return nil, err
			}
			return s.Emit(ctx, req)
		}},
	}
}

func pathID(p map[string]string) (int64, error) {
	id, err := strconv.ParseInt(p["id"], 10, 64)
	if err != nil {
		return 0, status.Errorf(codes.InvalidArgument, "bad id %q", p["id"])
	}
	return id, nil
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return status.Errorf(codes.InvalidArgument, "decode body: %v", err)
	}
	return nil
}

func writeError(w http.ResponseWriter, err error) {
	st := status.Convert(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(gwruntime.HTTPStatusFromCode(st.Code()))
	_ = json.NewEncoder(w).Encode(map[string]any{
		"code":    int(st.Code()),
		"message": st.Message(),
	})
}
