package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// replay streams the stored trajectory of a trace over a websocket, one location record per text
// message, interval_ms apart. the connection is closed after the last record.
func (api *traceAPI) replay(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	request := replayRequest{Name: p.ByName("name"), IntervalMs: 100}
	if interval := r.URL.Query().Get("interval_ms"); interval != "" {
		v, err := strconv.Atoi(interval)
		if err != nil {
			api.BadRequestResponse(w, r, errors.New("interval_ms must be a valid integer"))
			return
		}
		request.IntervalMs = v
	}
	if msgs := api.validator.Struct(request); len(msgs) > 0 {
		api.ValidationErrorResponse(w, r, msgs)
		return
	}

	records, err := api.traceService.Trajectory(request.Name)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	conn, _, hs, err := ws.UpgradeHTTP(r, w)
	if err != nil {
		api.log.Info("upgrade error", zap.Error(err), zap.String("trace", request.Name))
		return
	}
	defer conn.Close()
	api.log.Info("established websocket connection", zap.String("remote", conn.RemoteAddr().String()),
		zap.String("protocol", hs.Protocol), zap.String("trace", request.Name))

	interval := time.Duration(request.IntervalMs) * time.Millisecond
	ctx := r.Context()
	for i, rec := range records {
		msg, err := json.Marshal(envelope{"index": i, "total": len(records), "data": rec})
		if err != nil {
			api.log.Error("encode replay record", zap.Error(err))
			return
		}
		if err := wsutil.WriteServerText(conn, msg); err != nil {
			api.log.Info("replay client gone", zap.Error(err), zap.Int("sent", i))
			return
		}
		if interval > 0 && i+1 < len(records) {
			select {
			case <-ctx.Done():
				return
			case <-time.After(interval):
			}
		}
	}
	_ = ws.WriteFrame(conn, ws.NewCloseFrame(ws.NewCloseFrameBody(ws.StatusNormalClosure, "replay finished")))
}
