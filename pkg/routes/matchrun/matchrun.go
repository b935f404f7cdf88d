package matchrun

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectologger"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/pkg/context"
	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/models"
)

var validate = validator.New()

// Register registers match run routes
func Register(g *echo.Group) {
	g.POST("", CreateRun)
	g.GET("", ListRuns)
	g.GET("/:id", GetRun)
	g.GET("/:id/records", ListRunRecords)
}

// CreateRunRequest is the request body for starting a matching run
type CreateRunRequest struct {
	Method            string   `json:"method" validate:"required"`
	Threshold         int      `json:"threshold" validate:"omitempty,gte=60,lte=100"`
	SemanticThreshold int      `json:"semantic_threshold" validate:"omitempty,gte=60,lte=100"`
	StopWords         []string `json:"stop_words"`
	Principals        []string `json:"principals" validate:"required,min=1"`
	Candidates        []string `json:"candidates" validate:"required,min=1"`
}

// CreateRunResponse is the response body for a run. Error is set when the run
// failed partway and the records only cover the stages that completed.
type CreateRunResponse struct {
	Run     *models.MatchRun     `json:"run"`
	Records []models.MatchRecord `json:"records"`
	Error   string               `json:"error,omitempty"`
}

// CreateRun executes a matching run synchronously and returns the results
func CreateRun(c echo.Context) error {
	ctx := c.Request().Context()

	var req CreateRunRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, service, err := ectoinject.GetContext[*matching.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	ctx, logger, _ := ectoinject.GetContext[ectologger.Logger](ctx)
	var progress matching.ProgressFunc
	if logger != nil {
		progress = func(fraction float64, message string) {
			logger.WithContext(ctx).WithFields(map[string]any{
				"fraction": fraction,
				"phase":    message,
			}).Debug("Matching run progress")
		}
	}

	output, err := service.StartRun(ctx, matching.StartRunInput{
		Method:            req.Method,
		Threshold:         req.Threshold,
		SemanticThreshold: req.SemanticThreshold,
		StopWords:         req.StopWords,
		Principals:        req.Principals,
		Candidates:        req.Candidates,
	}, progress)
	if err != nil {
		if output != nil {
			// stage failure mid-run: return the rows that did complete
			return c.JSON(http.StatusBadGateway, CreateRunResponse{
				Run:     output.Run,
				Records: output.Records,
				Error:   err.Error(),
			})
		}
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, CreateRunResponse{
		Run:     output.Run,
		Records: output.Records,
	})
}

// GetRun retrieves a run by ID
func GetRun(c echo.Context) error {
	id := c.Param("id")
	ctx := context.SetRunID(c.Request().Context(), id)

	ctx, service, err := ectoinject.GetContext[*matching.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	run, err := service.GetRun(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, run)
}

// ListRuns lists recent runs
func ListRuns(c echo.Context) error {
	ctx := c.Request().Context()

	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	ctx, service, err := ectoinject.GetContext[*matching.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	runs, err := service.ListRuns(ctx, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, runs)
}

// ListRunRecords lists result rows for a run in input order
func ListRunRecords(c echo.Context) error {
	id := c.Param("id")
	ctx := context.SetRunID(c.Request().Context(), id)

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	ctx, service, err := ectoinject.GetContext[*matching.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	rows, err := service.ListRunRecords(ctx, id, limit, offset)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, rows)
}

// MethodInfo describes a selectable matching method
type MethodInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

var methodDescriptions = map[models.MatchMethod]string{
	models.MatchMethodFullSequence:       "Compares whole strings in strict character order",
	models.MatchMethodSubstringInclusion: "Rewards one string being contained in the other",
	models.MatchMethodOrderInsensitive:   "Compares strings with tokens sorted, ignoring word order",
	models.MatchMethodCoreWordSet:        "Compares shared tokens, tolerating extra words on either side",
	models.MatchMethodSemantic:           "Scores by embedding cosine similarity",
	models.MatchMethodHybrid:             "Tries fuzzy matching first and falls back to semantic",
}

// ListMethods lists the selectable matching methods
func ListMethods(c echo.Context) error {
	methods := make([]MethodInfo, 0, len(models.AllMatchMethods))
	for _, method := range models.AllMatchMethods {
		methods = append(methods, MethodInfo{
			Name:        string(method),
			Description: methodDescriptions[method],
		})
	}
	return c.JSON(http.StatusOK, methods)
}

// toHTTPError maps pipeline error types onto HTTP status codes
func toHTTPError(err error) error {
	if httperror.IsHTTPError(err) {
		return err
	}

	var inputErr *matching.InputError
	if errors.As(err, &inputErr) {
		return httperror.NewHTTPError(http.StatusBadRequest, inputErr.Msg)
	}

	var cfgErr *matching.ConfigurationError
	if errors.As(err, &cfgErr) {
		return httperror.NewHTTPError(http.StatusBadRequest, cfgErr.Msg)
	}

	var stageErr *matching.StageError
	if errors.As(err, &stageErr) {
		return httperror.NewHTTPError(http.StatusBadGateway, stageErr.Error())
	}

	return httperror.NewHTTPError(http.StatusInternalServerError, "matching run failed")
}
