package restapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sharedcode/premortem"
	"github.com/sharedcode/premortem/analyzer"
	"github.com/sharedcode/premortem/report"
)

var (
	errNotFound      = errors.New("analysis not found")
	errInvalidID     = errors.New("analysis id is not a valid uuid")
	errExplainTarget = errors.New("either scenario, or analysisId and scenarioId, are required")
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error string `json:"error"`
}

// AnalysisResponse is a stored report plus its share link.
type AnalysisResponse struct {
	premortem.Report
	ShareLink string `json:"shareLink"`
	// LookupError is set when every reference lookup failed and the scenarios were screened fail-closed.
	LookupError string `json:"lookupError,omitempty"`
}

// ShareResponse carries the plain-text summary of a report.
type ShareResponse struct {
	ID              string `json:"id"`
	Text            string `json:"text"`
	ShareLink       string `json:"shareLink"`
	DossierFileName string `json:"dossierFileName"`
}

// AdmitResponse is the gated batch. Analysis is set when a full document was posted.
type AdmitResponse struct {
	Analysis    *premortem.PreMortemAnalysis `json:"analysis,omitempty"`
	Scenarios   []premortem.FailureScenario  `json:"scenarios"`
	Decisions   []premortem.Decision         `json:"decisions"`
	LookupError string                       `json:"lookupError,omitempty"`
}

// ExplainRequest names a scenario either inline or by report and scenario id.
type ExplainRequest struct {
	AnalysisID string                     `json:"analysisId,omitempty"`
	ScenarioID string                     `json:"scenarioId,omitempty"`
	Scenario   *premortem.FailureScenario `json:"scenario,omitempty"`
	Stack      string                     `json:"stack,omitempty"`
}

// ExplainResponse carries a markdown briefing.
type ExplainResponse struct {
	Briefing string `json:"briefing"`
}

func abort(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: err.Error()})
}

// health godoc
// @Summary Liveness probe
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": premortem.Version})
}

// session godoc
// @Summary Returns the verified caller
// @Tags System
// @Produce json
// @Success 200 {object} Session
// @Security Bearer
// @Router /session [get]
func (s *Server) session(c *gin.Context) {
	sess, _ := SessionOf(c)
	c.IndentedJSON(http.StatusOK, sess)
}

// runAnalysis godoc
// @Summary Runs a pre-mortem analysis
// @Description Generates failure scenarios for the project, screens each through the admission gate and stores the report.
// @Tags Analyses
// @Accept json
// @Produce json
// @Param request body premortem.AnalysisRequest true "Project description"
// @Success 201 {object} AnalysisResponse
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Security Bearer
// @Router /analyses [post]
func (s *Server) runAnalysis(c *gin.Context) {
	var req premortem.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	if err := analyzer.Validate(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	sess, _ := SessionOf(c)
	r, err := s.service.RunFor(c.Request.Context(), sess.AgentID, req)
	resp := AnalysisResponse{Report: r}
	switch {
	case err == nil:
	case premortem.IsLookupUnavailable(err) && r.ID != "":
		resp.LookupError = err.Error()
	case premortem.IsGenerationFailure(err):
		abort(c, http.StatusBadGateway, err)
		return
	default:
		abort(c, http.StatusInternalServerError, err)
		return
	}
	resp.ShareLink = report.ShareLink(s.baseURL, r.ID)
	c.IndentedJSON(http.StatusCreated, resp)
}

// listAnalyses godoc
// @Summary Lists stored analyses
// @Description Admins see every report, other callers their own.
// @Tags Analyses
// @Produce json
// @Success 200 {array} premortem.ReportSummary
// @Security Bearer
// @Router /analyses [get]
func (s *Server) listAnalyses(c *gin.Context) {
	if s.store == nil {
		c.IndentedJSON(http.StatusOK, []premortem.ReportSummary{})
		return
	}
	list, err := s.store.List(c.Request.Context())
	if err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}
	sess, _ := SessionOf(c)
	out := make([]premortem.ReportSummary, 0, len(list))
	for _, r := range list {
		if sess.CanRead(r.Owner) {
			out = append(out, r)
		}
	}
	c.IndentedJSON(http.StatusOK, out)
}

// getAnalysis godoc
// @Summary Returns one analysis
// @Tags Analyses
// @Produce json
// @Param id path string true "Analysis id"
// @Success 200 {object} AnalysisResponse
// @Failure 404 {object} ErrorResponse
// @Security Bearer
// @Router /analyses/{id} [get]
func (s *Server) getAnalysis(c *gin.Context) {
	r, ok := s.fetch(c)
	if !ok {
		return
	}
	c.IndentedJSON(http.StatusOK, AnalysisResponse{Report: r, ShareLink: report.ShareLink(s.baseURL, r.ID)})
}

// shareAnalysis godoc
// @Summary Returns the plain-text share summary of an analysis
// @Tags Analyses
// @Produce json
// @Param id path string true "Analysis id"
// @Success 200 {object} ShareResponse
// @Failure 404 {object} ErrorResponse
// @Security Bearer
// @Router /analyses/{id}/share [get]
func (s *Server) shareAnalysis(c *gin.Context) {
	r, ok := s.fetch(c)
	if !ok {
		return
	}
	c.IndentedJSON(http.StatusOK, ShareResponse{
		ID:              r.ID,
		Text:            report.PlainText(r),
		ShareLink:       report.ShareLink(s.baseURL, r.ID),
		DossierFileName: report.DossierFileName(r.Request.Title),
	})
}

// fetch loads the report named by the id path parameter, answering 404 when it is
// missing or not readable by the caller.
func (s *Server) fetch(c *gin.Context) (premortem.Report, bool) {
	id := c.Param("id")
	if !premortem.ValidID(id) {
		abort(c, http.StatusBadRequest, errInvalidID)
		return premortem.Report{}, false
	}
	return s.load(c, id)
}

func (s *Server) load(c *gin.Context, id string) (premortem.Report, bool) {
	if s.store == nil {
		abort(c, http.StatusNotFound, errNotFound)
		return premortem.Report{}, false
	}
	r, found, err := s.store.Get(c.Request.Context(), id)
	if err != nil {
		abort(c, http.StatusInternalServerError, err)
		return premortem.Report{}, false
	}
	sess, _ := SessionOf(c)
	if !found || !sess.CanRead(r.Owner) {
		abort(c, http.StatusNotFound, errNotFound)
		return premortem.Report{}, false
	}
	return r, true
}

// admitScenarios godoc
// @Summary Screens scenarios through the admission gate
// @Description Accepts a full analysis document or a bare array of scenarios. Every scenario gets a reference lookup; policy failures are vetoed.
// @Tags Scenarios
// @Accept json
// @Produce json
// @Param body body premortem.PreMortemAnalysis true "Analysis document or scenario array"
// @Success 200 {object} AdmitResponse
// @Failure 422 {object} ErrorResponse
// @Security Bearer
// @Router /scenarios/admit [post]
func (s *Server) admitScenarios(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	doc, full, err := premortem.DecodeScenarios(string(body))
	if err != nil {
		abort(c, http.StatusUnprocessableEntity, err)
		return
	}
	admitted, decisions, err := s.gate.AdmitAnalysisWithDecisions(c.Request.Context(), &doc)
	if admitted == nil {
		abort(c, http.StatusUnprocessableEntity, err)
		return
	}
	resp := AdmitResponse{Scenarios: admitted.Scenarios, Decisions: decisions}
	if full {
		resp.Analysis = admitted
	}
	if err != nil {
		resp.LookupError = err.Error()
	}
	c.IndentedJSON(http.StatusOK, resp)
}

// explainScenario godoc
// @Summary Produces a forensic briefing for one scenario
// @Tags Scenarios
// @Accept json
// @Produce json
// @Param request body ExplainRequest true "Scenario inline, or analysis and scenario ids"
// @Success 200 {object} ExplainResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Security Bearer
// @Router /scenarios/explain [post]
func (s *Server) explainScenario(c *gin.Context) {
	var req ExplainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	sc, stack, ok := s.resolveScenario(c, req)
	if !ok {
		return
	}
	text, err := s.service.Explain(c.Request.Context(), sc, stack)
	if err != nil {
		abort(c, http.StatusBadGateway, err)
		return
	}
	c.IndentedJSON(http.StatusOK, ExplainResponse{Briefing: text})
}

func (s *Server) resolveScenario(c *gin.Context, req ExplainRequest) (premortem.FailureScenario, string, bool) {
	if req.Scenario != nil {
		return *req.Scenario, req.Stack, true
	}
	if req.AnalysisID == "" || req.ScenarioID == "" {
		abort(c, http.StatusBadRequest, errExplainTarget)
		return premortem.FailureScenario{}, "", false
	}
	if !premortem.ValidID(req.AnalysisID) {
		abort(c, http.StatusBadRequest, errInvalidID)
		return premortem.FailureScenario{}, "", false
	}
	r, ok := s.load(c, req.AnalysisID)
	if !ok {
		return premortem.FailureScenario{}, "", false
	}
	stack := req.Stack
	if strings.TrimSpace(stack) == "" {
		stack = r.Request.Stack
	}
	for _, sc := range r.Analysis.Scenarios {
		if sc.ID == req.ScenarioID {
			return sc, stack, true
		}
	}
	abort(c, http.StatusNotFound, errNotFound)
	return premortem.FailureScenario{}, "", false
}
