package debugger

import (
	"context"
	"fmt"
	"net"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/jhump/protoreflect/dynamic"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

// debugProto is a minimal schema for the session's request/response
// pair, parsed at runtime with protoparse rather than protoc-generated
// code — the same dynamic-descriptor approach the evaluator's gRPC
// builtins use for user-supplied .proto files, just with the schema
// fixed here instead of loaded from disk.
const debugProto = `
syntax = "proto3";
package atlasdebug;

message DebugRequest {
  string kind = 1;
  string file = 2;
  int32 line = 3;
  int32 col = 4;
  int32 id = 5;
  string expr = 6;
}

message DebugResponse {
  string kind = 1;
  string file = 2;
  int32 line = 3;
  int32 col = 4;
  int32 id = 5;
  bool verified = 6;
  string reason = 7;
  string value = 8;
  string type = 9;
  string message = 10;
}

service Debugger {
  rpc Process(DebugRequest) returns (DebugResponse);
}
`

// RPCServer exposes a DebuggerSession over gRPC using dynamic messages
// built from debugProto, so no protoc-generated Go types are needed —
// the same dynamic.Message/desc.ServiceDescriptor pattern the
// evaluator's grpcRegister builtin uses for user .proto schemas.
type RPCServer struct {
	session *DebuggerSession
	server  *grpc.Server
	reqMD   *desc.MessageDescriptor
	respMD  *desc.MessageDescriptor
}

// NewRPCServer parses debugProto and builds a grpc.Server with one
// hand-registered ServiceDesc wired to session.ProcessRequest.
func NewRPCServer(session *DebuggerSession) (*RPCServer, error) {
	parser := protoparse.Parser{
		Accessor: protoparse.FileContentsFromMap(map[string]string{
			"debugger.proto": debugProto,
		}),
	}
	fds, err := parser.ParseFiles("debugger.proto")
	if err != nil {
		return nil, fmt.Errorf("debugger: parse rpc schema: %w", err)
	}
	fd := fds[0]
	sd := fd.FindService("atlasdebug.Debugger")
	if sd == nil {
		return nil, fmt.Errorf("debugger: service descriptor not found")
	}
	md := sd.FindMethodByName("Process")
	if md == nil {
		return nil, fmt.Errorf("debugger: method descriptor not found")
	}

	r := &RPCServer{
		session: session,
		reqMD:   md.GetInputType(),
		respMD:  md.GetOutputType(),
	}

	svcDesc := &grpc.ServiceDesc{
		ServiceName: "atlasdebug.Debugger",
		HandlerType: (*interface{})(nil),
		Methods: []grpc.MethodDesc{{
			MethodName: "Process",
			Handler:    r.handleProcess,
		}},
		Metadata: "debugger.proto",
	}

	r.server = grpc.NewServer()
	r.server.RegisterService(svcDesc, r)
	return r, nil
}

func (r *RPCServer) handleProcess(srv interface{}, ctx context.Context, dec func(interface{}) error, _ grpc.UnaryServerInterceptor) (interface{}, error) {
	in := dynamic.NewMessage(r.reqMD)
	if err := dec(in); err != nil {
		return nil, err
	}

	req := Request{
		Kind: in.GetFieldByName("kind").(string),
		File: in.GetFieldByName("file").(string),
		Line: int(in.GetFieldByName("line").(int32)),
		Col:  int(in.GetFieldByName("col").(int32)),
		ID:   BreakpointID(in.GetFieldByName("id").(int32)),
		Expr: in.GetFieldByName("expr").(string),
	}

	resp := r.session.ProcessRequest(req)

	out := dynamic.NewMessage(r.respMD)
	out.SetFieldByName("kind", resp.Kind)
	out.SetFieldByName("id", int32(resp.Breakpoint.ID))
	out.SetFieldByName("verified", resp.Verified)
	out.SetFieldByName("reason", resp.Reason)
	out.SetFieldByName("file", resp.Location.File)
	out.SetFieldByName("line", int32(resp.Location.Line))
	out.SetFieldByName("col", int32(resp.Location.Col))
	out.SetFieldByName("value", resp.Value)
	out.SetFieldByName("type", resp.Type)
	if resp.Kind == RespError {
		out.SetFieldByName("message", resp.Message)
	}
	return out, nil
}

// Serve listens on addr and blocks until the server stops or ctx is
// cancelled, using an errgroup so Serve's error and the context
// cancellation race cleanly — the same shutdown shape
// internal/modules' loader uses golang.org/x/sync for, applied here to
// a second independent goroutine pair instead of a worker pool.
func (r *RPCServer) Serve(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("debugger: listen on %s: %w", addr, err)
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return r.server.Serve(lis)
	})
	g.Go(func() error {
		<-gctx.Done()
		r.server.GracefulStop()
		return nil
	})
	return g.Wait()
}

// Stop gracefully shuts the server down outside of Serve's errgroup,
// for callers that started Serve in their own goroutine.
func (r *RPCServer) Stop() {
	if r.server != nil {
		r.server.GracefulStop()
	}
}
