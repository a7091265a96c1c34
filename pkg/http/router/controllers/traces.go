package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/lintang-b-s/macrotracking/pkg/comparator"
	"github.com/lintang-b-s/macrotracking/pkg/config"
	helper "github.com/lintang-b-s/macrotracking/pkg/http/router/routerhelper"
	"go.uber.org/zap"
)

type traceAPI struct {
	traceService TraceService
	validator    *config.Validator
	log          *zap.Logger
}

func New(traceService TraceService, log *zap.Logger) *traceAPI {
	return &traceAPI{
		traceService: traceService,
		validator:    config.NewValidator(),
		log:          log,
	}
}

func (api *traceAPI) Routes(group *helper.RouteGroup) {
	traces := group.Group("/traces")
	traces.GET("", api.listTraces)
	traces.GET("/:name/trajectory", api.trajectory)
	traces.GET("/:name/compare", api.compare)
	traces.GET("/:name/plot", api.plot)
	traces.GET("/:name/replay", api.replay)
	traces.POST("/:name/run", api.run)
}

func (api *traceAPI) listTraces(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	descriptors := api.traceService.Traces()
	res := make([]traceResponse, 0, len(descriptors))
	for _, d := range descriptors {
		res = append(res, traceResponse{
			Name:            d.Name,
			TraceFile:       d.TraceFile,
			GroundTruthFile: d.GroundTruthFile,
			StartLat:        d.StartLat,
			StartLon:        d.StartLon,
			StartHeading:    d.StartHeading,
		})
	}
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": res}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (api *traceAPI) trajectory(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	name := p.ByName("name")
	records, err := api.traceService.Trajectory(name)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewTrajectoryResponse(name, records)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (api *traceAPI) compare(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	request := compareRequest{Name: p.ByName("name"), Target: comparator.DefaultTarget}
	if target := r.URL.Query().Get("target"); target != "" {
		v, err := strconv.Atoi(target)
		if err != nil {
			api.BadRequestResponse(w, r, errors.New("target must be a valid integer"))
			return
		}
		request.Target = v
	}
	if msgs := api.validator.Struct(request); len(msgs) > 0 {
		api.ValidationErrorResponse(w, r, msgs)
		return
	}

	res, err := api.traceService.Compare(request.Name, request.Target)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewCompareResponse(request.Name, request.Target, res)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (api *traceAPI) plot(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	path, err := api.traceService.PlotPath(p.ByName("name"))
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	http.ServeFile(w, r, path)
}

func (api *traceAPI) run(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	report, err := api.traceService.Run(r.Context(), p.ByName("name"))
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": report}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}
