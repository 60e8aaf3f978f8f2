package relay

import (
	"context"
	"io"
	"net/http"

	"github.com/thebartekbanach/tinyrelay/pkg/compressor"
	"github.com/thebartekbanach/tinyrelay/pkg/keys"
)

type RelayResponseWriter interface {
	WriteImage(image compressor.TransformResult)
	WriteJSON(code int, body interface{})
	WriteProxied(response *http.Response)
}

type InboundRequest struct {
	Selector    string
	ContentType string
	Body        io.Reader
}

type KeyResolver interface {
	Resolve(selector string) (string, error)
	Status() []keys.SlotStatus
}

type RelayService interface {
	Handle(ctx context.Context, request InboundRequest, responseWriter RelayResponseWriter)
	Passthrough(ctx context.Context, targetURL string, responseWriter RelayResponseWriter)
	KeyStatus() []keys.SlotStatus
}
