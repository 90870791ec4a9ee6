package stubbackend

import (
	"bytes"
	"context"
	"strings"

	"github.com/cloudwego/hertz/pkg/common/config"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/route"
)

// InProcess serves requests against the stub routes without a listener. It
// satisfies httpbackend.Doer.
type InProcess struct {
	engine *route.Engine
}

// InProcess returns a Doer bound to s.
func (s *Server) InProcess() *InProcess {
	engine := route.NewEngine(config.NewOptions(nil))
	s.Register(engine)
	return &InProcess{engine: engine}
}

// Engine exposes the routing engine, mainly for ut.PerformRequest in tests.
func (p *InProcess) Engine() *route.Engine { return p.engine }

// Do routes req through the engine and copies the reply into resp.
func (p *InProcess) Do(ctx context.Context, req *protocol.Request, resp *protocol.Response) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var headers []ut.Header
	req.Header.VisitAll(func(key, value []byte) {
		if strings.EqualFold(string(key), "Content-Length") {
			return
		}
		headers = append(headers, ut.Header{Key: string(key), Value: string(value)})
	})
	body := req.Body()
	w := ut.PerformRequest(p.engine, string(req.Method()), string(req.URI().RequestURI()),
		&ut.Body{Body: bytes.NewReader(body), Len: len(body)}, headers...)
	w.Result().CopyTo(resp)
	return nil
}
