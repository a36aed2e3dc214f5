// Package api serves the operator-facing station API: link state, latest
// telemetry, and command submission.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cansat-link/groundstation/internal/app"
	"github.com/cansat-link/groundstation/internal/command"
	"github.com/cansat-link/groundstation/internal/ledger"
)

// Handler carries the station state into the HTTP routes.
type Handler struct {
	st  *app.Station
	b   command.Builder
	log *zap.Logger
}

// NewHandler creates the API handler for one station.
func NewHandler(st *app.Station, teamID uint16, log *zap.Logger) *Handler {
	return &Handler{st: st, b: command.Builder{TeamID: teamID}, log: log}
}

// Status reports run identity, link generation and event counts.
func (h *Handler) Status(c *gin.Context) {
	snap := h.st.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"runId":      snap.RunID,
		"generation": snap.Generation,
		"linked":     snap.Generation > 0,
		"events":     snap.Counts,
		"salvaged":   snap.Salvaged,
	})
}

// LatestTelemetry returns the most recent record per family.
func (h *Handler) LatestTelemetry(c *gin.Context) {
	snap := h.st.Snapshot()
	out := gin.H{}
	for fam, rec := range snap.Latest {
		out[string(fam)] = gin.H{
			"line":           rec.Format(),
			"missionSeconds": rec.Time().Seconds(),
		}
	}
	c.JSON(http.StatusOK, out)
}

// ListCommands returns the command history in submission order.
func (h *Handler) ListCommands(c *gin.Context) {
	cmds := h.st.Ledger().Snapshot()
	out := make([]gin.H, len(cmds))
	for i, cmd := range cmds {
		entry := gin.H{
			"seq":         cmd.Seq,
			"text":        cmd.Text,
			"state":       cmd.State.String(),
			"submittedAt": cmd.SubmittedAt.Format(time.RFC3339Nano),
		}
		if cmd.State != ledger.StateUnsent {
			entry["frameId"] = cmd.FrameID
			entry["sentAt"] = cmd.SentAt.Format(time.RFC3339Nano)
		}
		if cmd.HasStatus {
			entry["status"] = cmd.LastStatus.String()
		}
		out[i] = entry
	}
	c.JSON(http.StatusOK, gin.H{"commands": out})
}

type submitRequest struct {
	// Text sends a raw command string as-is; when set, Kind is ignored.
	Text string `json:"text"`
	// Kind selects a built command: cx, st_gps, st_now, sim, simp, cal,
	// reset, setstate.
	Kind    string `json:"kind"`
	On      *bool  `json:"on"`
	Mode    string `json:"mode"`
	Pascals uint32 `json:"pascals"`
	Target  string `json:"target"`
	State   string `json:"state"`
}

// SubmitCommand queues a command for transmission.
func (h *Handler) SubmitCommand(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	text := req.Text
	if text == "" {
		built, err := h.build(req)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		text = built
	}

	seq := h.st.Submit(text)
	h.log.Info("operator command accepted", zap.Uint64("seq", seq), zap.String("text", text))
	c.JSON(http.StatusAccepted, gin.H{"seq": seq, "text": text})
}

func (h *Handler) build(req submitRequest) (string, error) {
	switch req.Kind {
	case "cx":
		if req.On == nil {
			return "", fmt.Errorf("cx requires \"on\"")
		}
		return h.b.TelemetryEnable(*req.On), nil
	case "st_gps":
		return h.b.SetTimeGPS(), nil
	case "st_now":
		return h.b.SetTimeUTC(time.Now()), nil
	case "sim":
		switch m := command.SimMode(req.Mode); m {
		case command.SimDisable, command.SimEnable, command.SimActivate:
			return h.b.Simulation(m), nil
		}
		return "", fmt.Errorf("unknown sim mode %q", req.Mode)
	case "simp":
		return h.b.SimulatedPressure(req.Pascals), nil
	case "cal":
		return h.b.Calibrate(), nil
	case "reset":
		return h.b.Reset(), nil
	case "setstate":
		tgt := command.Target(req.Target)
		if tgt != command.TargetContainer && tgt != command.TargetProbe {
			return "", fmt.Errorf("unknown target %q", req.Target)
		}
		switch s := command.State(req.State); s {
		case command.StateAscent, command.StateWaitDeploy, command.StateWaitPara,
			command.StateWaitGnd, command.StateOnGround:
			return h.b.SetState(tgt, s), nil
		}
		return "", fmt.Errorf("unknown state %q", req.State)
	}
	return "", fmt.Errorf("unknown command kind %q", req.Kind)
}
