package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/rpc"
	"github.com/gorilla/rpc/json"
	"go.uber.org/zap"

	"github.com/t3rn/circuit/executor"
	"github.com/t3rn/circuit/logging"
)

// NewHandler builds the HTTP surface for one Engine: a gorilla/rpc
// JSON-RPC endpoint at "/" registered under the "circuit" service name,
// and a plain "/healthz" route for load balancers, grounded on the
// teacher's VM.CreateHandlers (rpc.NewServer + RegisterCodec +
// RegisterService) and api/health.Service respectively.
func NewHandler(engine *executor.Engine, log logging.Logger, checkers map[string]Checker) (http.Handler, error) {
	rpcServer := rpc.NewServer()
	rpcServer.RegisterCodec(json.NewCodec(), "application/json")
	rpcServer.RegisterCodec(json.NewCodec(), "application/json;charset=UTF-8")
	rpcServer.RegisterInterceptFunc(func(i *rpc.RequestInfo) *http.Request {
		return i.Request
	})
	rpcServer.RegisterAfterFunc(func(i *rpc.RequestInfo) {
		if i.Error != nil {
			log.Warn("api call failed", zap.String("method", i.Method), zap.Error(i.Error))
		}
	})

	if err := rpcServer.RegisterService(NewService(engine, log), "circuit"); err != nil {
		return nil, err
	}

	health := NewHealthService(log, checkers)
	if err := rpcServer.RegisterService(health, "health"); err != nil {
		return nil, err
	}

	router := mux.NewRouter()
	router.Handle("/healthz", health)
	router.Handle("/", rpcServer)
	return router, nil
}
