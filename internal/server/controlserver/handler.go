package controlserver

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"strings"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	controlv1 "github.com/dfxyz/portal/api/proto/v1"
	"github.com/dfxyz/portal/internal/telemetry/logger"
	"github.com/dfxyz/portal/internal/telemetry/metric"
	"github.com/dfxyz/portal/pkg/wordtree"
)

// Canceler is the root context the shutdown command cancels.
type Canceler interface {
	Cancel()
}

// HandlerConfig configures a Handler.
type HandlerConfig struct {
	// Root is cancelled by the shutdown command.
	Root Canceler
	// RateLimit is the accepted datagrams per second. 0 means unlimited.
	RateLimit int
	// AllowedSources are dotted address prefixes. Empty allows everyone.
	AllowedSources []string
	// Metrics records request counters. Optional.
	Metrics *metric.Registry
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Handler handles control requests.
type Handler struct {
	root    Canceler
	limiter *rate.Limiter
	acl     *wordtree.Tree
	metrics *metric.Registry
	logger  *slog.Logger

	// replyIP is the local address replies are sent from.
	replyIP net.IP
}

// NewHandler creates a new Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	h := &Handler{
		root:    cfg.Root,
		acl:     wordtree.New(cfg.AllowedSources...),
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	if cfg.RateLimit > 0 {
		h.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimit)
	}
	return h
}

// Handle processes one datagram received from from.
func (h *Handler) Handle(ctx context.Context, data []byte, from netip.AddrPort) {
	ctx = logger.WithRequestID(ctx, ulid.Make().String())
	log := h.logger.With("request_id", logger.RequestIDFromContext(ctx), "source", from.String())

	if !h.allowed(from.Addr()) {
		log.Debug("control request denied")
		h.record("unknown", metric.ResultDenied)
		return
	}
	if h.limiter != nil && !h.limiter.Allow() {
		log.Debug("control request rate limited")
		h.record("unknown", metric.ResultLimited)
		return
	}

	var req controlv1.ControlRequest
	if err := req.Unmarshal(data); err != nil {
		log.Debug("dropping malformed control request", "error", err, "size", len(data))
		h.record("unknown", metric.ResultMalformed)
		return
	}

	switch req.Content.(type) {
	case nil:
		log.Debug("dropping empty control request")
		h.record("empty", metric.ResultMalformed)
	case controlv1.ShutdownRequest, *controlv1.ShutdownRequest:
		log.Info("shutdown requested")
		h.root.Cancel()
		if err := h.reply(&controlv1.ControlResponse{Content: controlv1.ShutdownAck{}}, from); err != nil {
			log.Warn("failed to send shutdown acknowledgement", "error", err)
			if h.metrics != nil {
				h.metrics.ControlReplyErrors.Inc()
			}
			h.record("shutdown", metric.ResultError)
			return
		}
		h.record("shutdown", metric.ResultOK)
	}
}

func (h *Handler) allowed(addr netip.Addr) bool {
	if h.acl.Empty() {
		return true
	}
	addr = addr.Unmap()
	if addr.Is4() {
		return h.acl.Contains(strings.Split(addr.String(), ".")...)
	}
	return h.acl.Contains(addr.String())
}

// reply sends resp from a fresh ephemeral socket, since the listening
// socket closes once the root is cancelled.
func (h *Handler) reply(resp *controlv1.ControlResponse, to netip.AddrPort) error {
	b, err := resp.Marshal()
	if err != nil {
		return err
	}
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: h.replyIP})
	if err != nil {
		return fmt.Errorf("bind reply socket: %w", err)
	}
	defer conn.Close()

	if _, err := conn.WriteToUDPAddrPort(b, to); err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	return nil
}

func (h *Handler) record(typ, result string) {
	if h.metrics != nil {
		h.metrics.RecordControlRequest(typ, result)
	}
}
