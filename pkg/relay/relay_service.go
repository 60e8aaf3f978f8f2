package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"github.com/thebartekbanach/tinyrelay/pkg/compressor"
	"github.com/thebartekbanach/tinyrelay/pkg/filefetcher"
	"github.com/thebartekbanach/tinyrelay/pkg/keys"
)

type RelayServiceConfig struct {
	AllowedProxyDomains []string
}

type relayService struct {
	config     RelayServiceConfig
	keyRing    KeyResolver
	compressor compressor.CompressionService
	fetcher    filefetcher.Fetcher
}

var _ RelayService = (*relayService)(nil)

func NewRelayService(
	config RelayServiceConfig,
	keyRing KeyResolver,
	compressionService compressor.CompressionService,
	fetcher filefetcher.Fetcher,
) RelayService {
	return &relayService{
		config:     config,
		keyRing:    keyRing,
		compressor: compressionService,
		fetcher:    fetcher,
	}
}

func (s *relayService) Handle(ctx context.Context, request InboundRequest, responseWriter RelayResponseWriter) {
	logger := zerolog.Ctx(ctx)

	secret, ok := s.resolveSecret(ctx, request.Selector, responseWriter)
	if !ok {
		return
	}

	parsedRequest, err := ParseRequest(request.ContentType, request.Body)
	if err != nil {
		s.writeRequestError(ctx, err, responseWriter)
		return
	}

	logger.Debug().
		Str("selector", request.Selector).
		Str("operation", string(parsedRequest.Operation)).
		Str("content_type", parsedRequest.ContentType).
		Int("payload_size", len(parsedRequest.Payload)).
		Msg("forwarding payload to compression service")

	shrinkResult, err := s.compressor.Shrink(ctx, secret, parsedRequest.ContentType, parsedRequest.Payload)
	if err != nil {
		s.writeUpstreamFailure(ctx, err, responseWriter)
		return
	}

	transform := parsedRequest.TransformRequest()
	if transform.IsEmpty() {
		responseWriter.WriteJSON(http.StatusOK, locationResponse{
			Location: shrinkResult.Location,
			Input:    shrinkResult.Input,
			Output:   shrinkResult.Output,
		})
		return
	}

	image, err := s.compressor.Transform(ctx, secret, shrinkResult.Location, transform)
	if err != nil {
		s.writeUpstreamFailure(ctx, err, responseWriter)
		return
	}

	responseWriter.WriteImage(image)
}

func (s *relayService) Passthrough(ctx context.Context, targetURL string, responseWriter RelayResponseWriter) {
	if !s.isAllowedProxyTarget(targetURL) {
		responseWriter.WriteJSON(http.StatusForbidden, messageResponse{MessageProxyNotAllowed})
		return
	}

	response, err := s.fetcher.Fetch(ctx, targetURL)
	if err != nil {
		if errors.Is(err, filefetcher.ErrRedirectNotAllowed) {
			zerolog.Ctx(ctx).Warn().Err(err).Str("target", targetURL).Msg("pass-through redirect refused")
			responseWriter.WriteJSON(http.StatusForbidden, messageResponse{MessageProxyNotAllowed})
			return
		}

		if errors.Is(err, filefetcher.ErrInvalidURL) || errors.Is(err, filefetcher.ErrUnsupportedScheme) {
			responseWriter.WriteJSON(http.StatusBadRequest, messageResponse{MessageProxyTargetInvalid})
			return
		}

		zerolog.Ctx(ctx).Error().Err(err).Str("target", targetURL).Msg("pass-through fetch failed")
		responseWriter.WriteJSON(http.StatusInternalServerError, NewUnexpectedErrorResponse(err.Error(), ""))
		return
	}

	responseWriter.WriteProxied(response)
}

func (s *relayService) KeyStatus() []keys.SlotStatus {
	return s.keyRing.Status()
}

func (s *relayService) resolveSecret(ctx context.Context, selector string, responseWriter RelayResponseWriter) (string, bool) {
	secret, err := s.keyRing.Resolve(selector)
	switch {
	case err == nil:
		return secret, true
	case errors.Is(err, keys.ErrSelectorMissing):
		responseWriter.WriteJSON(http.StatusBadRequest, messageResponse{MessageKeyMissing})
	case errors.Is(err, keys.ErrInvalidSelector):
		responseWriter.WriteJSON(http.StatusBadRequest, invalidSelectorResponse{
			Message:  MessageInvalidSelector,
			Received: selector,
			Expected: keys.Slots,
		})
	case errors.Is(err, keys.ErrKeyNotConfigured):
		zerolog.Ctx(ctx).Warn().Str("selector", selector).Msg("request used a key slot that is not configured")
		responseWriter.WriteJSON(http.StatusInternalServerError, keyNotConfiguredResponse{
			Message:  MessageKeyNotConfigured,
			Selector: selector,
		})
	default:
		responseWriter.WriteJSON(http.StatusInternalServerError, NewUnexpectedErrorResponse(err.Error(), ""))
	}

	return "", false
}

func (s *relayService) writeRequestError(ctx context.Context, err error, responseWriter RelayResponseWriter) {
	switch {
	case errors.Is(err, ErrNoFileData):
		responseWriter.WriteJSON(http.StatusBadRequest, messageResponse{MessageNoFileData})
	case errors.Is(err, ErrInvalidJSON):
		responseWriter.WriteJSON(http.StatusBadRequest, messageResponse{MessageInvalidJSON})
	case errors.Is(err, ErrInvalidFileData):
		responseWriter.WriteJSON(http.StatusBadRequest, messageResponse{MessageInvalidFileData})
	case errors.Is(err, ErrBodyTooLarge):
		responseWriter.WriteJSON(http.StatusRequestEntityTooLarge, messageResponse{MessageBodyTooLarge})
	default:
		zerolog.Ctx(ctx).Error().Err(err).Msg("could not read request body")
		responseWriter.WriteJSON(http.StatusInternalServerError, NewUnexpectedErrorResponse(err.Error(), ""))
	}
}

func (s *relayService) writeUpstreamFailure(ctx context.Context, err error, responseWriter RelayResponseWriter) {
	logger := zerolog.Ctx(ctx)

	if upstreamErr, ok := compressor.AsUpstreamError(err); ok {
		logger.Warn().
			Str("stage", upstreamErr.Stage).
			Int("status", upstreamErr.StatusCode).
			Msg("compression service rejected the request")

		if upstreamErr.JSONBody() {
			responseWriter.WriteJSON(upstreamErr.StatusCode, json.RawMessage(upstreamErr.Body))
			return
		}

		responseWriter.WriteJSON(upstreamErr.StatusCode, upstreamFailureResponse{
			Error:   "UpstreamError",
			Message: fmt.Sprintf("%s failed with status %d", capitalize(upstreamErr.Stage), upstreamErr.StatusCode),
		})
		return
	}

	if errors.Is(err, compressor.ErrLocationMissing) {
		logger.Error().Msg("compression service did not return a location")
		responseWriter.WriteJSON(http.StatusInternalServerError, messageResponse{MessageLocationMissing})
		return
	}

	logger.Error().Err(err).Msg("compression service call failed")
	responseWriter.WriteJSON(http.StatusInternalServerError, NewUnexpectedErrorResponse(err.Error(), ""))
}

func (s *relayService) isAllowedProxyTarget(targetURL string) bool {
	url, err := url.Parse(targetURL)
	if err != nil {
		return false
	}

	return filefetcher.IsAllowedHost(s.config.AllowedProxyDomains, url.Hostname())
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}
