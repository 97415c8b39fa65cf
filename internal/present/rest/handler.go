package rest

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kehm/eckochain-client/internal/domain"
	"github.com/kehm/eckochain-client/internal/present/rest/presenter"
	"github.com/kehm/eckochain-client/internal/usecase"
)

type Handler struct {
	dataset  *usecase.DatasetUsecase
	contract *usecase.ContractUsecase
}

func NewHandler(
	dataset *usecase.DatasetUsecase,
	contract *usecase.ContractUsecase,
) *Handler {
	return &Handler{
		dataset:  dataset,
		contract: contract,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/datasets", h.handleListDatasets)
	e.GET("/datasets/user", h.handleUserDatasets)
	e.GET("/datasets/:datasetId", h.handleGetDataset)
	e.POST("/datasets", h.handleSubmitDataset)
	e.GET("/datasets/:datasetId/file", h.handleRetrieveFile)
	e.PUT("/datasets/:datasetId", h.handleUpdateMetadata)
	e.DELETE("/datasets/:datasetId", h.handleRemoveDataset)
	e.GET("/contracts/dataset/:datasetId", h.handleDatasetContract)
	e.GET("/contracts/pending/user", h.handlePendingProposals)
	e.GET("/contracts/pending/datasets", h.handlePendingDatasetProposals)
	e.GET("/contracts/resolved", h.handleResolvedProposals)
	e.POST("/contracts", h.handleProposeContract)
	e.POST("/contracts/resolve", h.handleResolveContract)
	e.DELETE("/contracts/:contractId", h.handleCancelContract)
}

func (h *Handler) handleListDatasets(c echo.Context) error {
	ctx := c.Request().Context()
	requester, _ := requesterFrom(c)

	datasets, err := h.dataset.List(ctx, requester.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, datasets)
}

func (h *Handler) handleUserDatasets(c echo.Context) error {
	ctx := c.Request().Context()
	requester, ok := requesterFrom(c)
	if !ok {
		return presenter.Unauthorized(c)
	}

	datasets, err := h.dataset.UserDatasets(ctx, requester.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, datasets)
}

func (h *Handler) handleGetDataset(c echo.Context) error {
	ctx := c.Request().Context()

	dataset, err := h.dataset.GetByID(ctx, c.Param("datasetId"))
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, dataset)
}

func (h *Handler) handleSubmitDataset(c echo.Context) error {
	ctx := c.Request().Context()
	requester, ok := requesterFrom(c)
	if !ok || !requester.EmailVerified {
		return presenter.Unauthorized(c)
	}

	form, err := bindDatasetForm(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}
	if form.Survey == "" || form.EarliestYearCollected == 0 {
		return presenter.BadRequestMessage(c, "survey and earliestYearCollected are required")
	}

	file, err := readUpload(c, "dataset")
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	datasetID, err := h.dataset.Submit(ctx, form, file, c.FormValue("mediaId"), requester.UserID, requester.OrganizationID)
	if err != nil {
		return respondError(c, err)
	}
	return presenter.Created(c, echo.Map{"datasetId": datasetID})
}

func (h *Handler) handleRetrieveFile(c echo.Context) error {
	ctx := c.Request().Context()
	requester, ok := requesterFrom(c)
	if !ok || !requester.EmailVerified {
		return presenter.Unauthorized(c)
	}

	content, err := h.dataset.Retrieve(ctx, c.Param("datasetId"), requester.UserID, requester.OrganizationID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Blob(http.StatusOK, "application/octet-stream", content)
}

func (h *Handler) handleUpdateMetadata(c echo.Context) error {
	ctx := c.Request().Context()
	requester, ok := requesterFrom(c)
	if !ok || !requester.EmailVerified {
		return presenter.Unauthorized(c)
	}

	form, err := bindDatasetForm(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	err = h.dataset.UpdateMetadata(ctx, c.Param("datasetId"), form, requester.UserID, requester.OrganizationID)
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleRemoveDataset(c echo.Context) error {
	ctx := c.Request().Context()
	requester, ok := requesterFrom(c)
	if !ok || !requester.EmailVerified {
		return presenter.Unauthorized(c)
	}

	err := h.dataset.Remove(ctx, c.Param("datasetId"), requester.UserID, requester.OrganizationID)
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleDatasetContract(c echo.Context) error {
	ctx := c.Request().Context()
	requester, ok := requesterFrom(c)
	if !ok {
		return presenter.Unauthorized(c)
	}

	contract, err := h.contract.DatasetContract(ctx, c.Param("datasetId"), requester.UserID)
	if err != nil {
		return respondError(c, err)
	}
	contract.UserID = ""
	return presenter.OK(c, contract)
}

func (h *Handler) handlePendingProposals(c echo.Context) error {
	ctx := c.Request().Context()
	requester, ok := requesterFrom(c)
	if !ok {
		return presenter.Unauthorized(c)
	}

	contracts, err := h.contract.PendingProposals(ctx, requester.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, contracts)
}

func (h *Handler) handlePendingDatasetProposals(c echo.Context) error {
	ctx := c.Request().Context()
	requester, ok := requesterFrom(c)
	if !ok {
		return presenter.Unauthorized(c)
	}

	contracts, err := h.contract.PendingDatasetProposals(ctx, requester.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, contracts)
}

func (h *Handler) handleResolvedProposals(c echo.Context) error {
	ctx := c.Request().Context()
	requester, ok := requesterFrom(c)
	if !ok {
		return presenter.Unauthorized(c)
	}

	contracts, err := h.contract.ResolvedProposals(ctx, requester.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, contracts)
}

func (h *Handler) handleProposeContract(c echo.Context) error {
	ctx := c.Request().Context()
	requester, ok := requesterFrom(c)
	if !ok || !requester.EmailVerified {
		return presenter.Unauthorized(c)
	}

	var request struct {
		DatasetID string `json:"datasetId"`
		Proposal  string `json:"proposal"`
	}
	if err := c.Bind(&request); err != nil {
		return presenter.BadRequest(c, err)
	}
	if request.DatasetID == "" || strings.TrimSpace(request.Proposal) == "" {
		return presenter.BadRequestMessage(c, "datasetId and proposal are required")
	}

	err := h.contract.Propose(ctx, request.DatasetID, request.Proposal, requester.UserID, requester.OrganizationID)
	if err != nil {
		return respondError(c, err)
	}
	return presenter.Created(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleResolveContract(c echo.Context) error {
	ctx := c.Request().Context()
	requester, ok := requesterFrom(c)
	if !ok || !requester.EmailVerified {
		return presenter.Unauthorized(c)
	}

	var request struct {
		ContractID string `json:"contractId"`
		Accept     bool   `json:"accept"`
		Response   string `json:"response"`
	}
	if err := c.Bind(&request); err != nil {
		return presenter.BadRequest(c, err)
	}
	if request.ContractID == "" {
		return presenter.BadRequestMessage(c, "contractId is required")
	}
	if !request.Accept && strings.TrimSpace(request.Response) == "" {
		return presenter.BadRequestMessage(c, "a response is required when rejecting")
	}

	err := h.contract.Resolve(ctx, request.ContractID, request.Accept, request.Response, requester.UserID, requester.OrganizationID)
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleCancelContract(c echo.Context) error {
	ctx := c.Request().Context()
	requester, ok := requesterFrom(c)
	if !ok {
		return presenter.Unauthorized(c)
	}

	err := h.contract.Cancel(ctx, c.Param("contractId"), requester.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func requesterFrom(c echo.Context) (domain.Requester, bool) {
	ctx := c.Request().Context()
	userID, ok := ctx.Value(domain.RequesterIdCtxKey).(string)
	if !ok || userID == "" {
		return domain.Requester{}, false
	}
	orgID, _ := ctx.Value(domain.RequesterOrgCtxKey).(int)
	role, _ := ctx.Value(domain.RequesterRoleCtxKey).(string)
	verified, _ := ctx.Value(domain.RequesterVerifiedCtxKey).(bool)
	return domain.Requester{
		UserID:         userID,
		OrganizationID: orgID,
		Role:           role,
		EmailVerified:  verified,
	}, true
}

func bindDatasetForm(c echo.Context) (domain.DatasetForm, error) {
	form := domain.DatasetForm{
		Survey:          c.FormValue("survey"),
		Description:     c.FormValue("description"),
		Terms:           c.FormValue("terms"),
		License:         c.FormValue("license"),
		Habitat:         c.FormValue("habitat"),
		Taxa:            c.FormValue("taxa"),
		LocationRemarks: c.FormValue("locationRemarks"),
		GeoReference:    c.FormValue("geoReference"),
		Countries:       splitList(c.FormValue("countries")),
		Contributors:    splitList(c.FormValue("contributors")),
	}

	if value := c.FormValue("earliestYearCollected"); value != "" {
		year, err := strconv.Atoi(value)
		if err != nil {
			return form, err
		}
		form.EarliestYearCollected = year
	}
	if value := c.FormValue("latestYearCollected"); value != "" {
		year, err := strconv.Atoi(value)
		if err != nil {
			return form, err
		}
		form.LatestYearCollected = year
	}
	return form, nil
}

func readUpload(c echo.Context, field string) (domain.FileUpload, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return domain.FileUpload{}, err
	}
	file, err := header.Open()
	if err != nil {
		return domain.FileUpload{}, err
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return domain.FileUpload{}, err
	}
	return domain.FileUpload{
		Name:    header.Filename,
		Type:    header.Header.Get("Content-Type"),
		Content: content,
	}, nil
}

func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return presenter.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrPolicyMissing):
		return presenter.BadRequest(c, err)
	case errors.Is(err, domain.ErrStaleState):
		return presenter.Conflict(c, err)
	case errors.Is(err, domain.ErrIdentityNotFound):
		return presenter.Forbidden(c, err)
	default:
		return presenter.InternalError(c, err)
	}
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	list := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			list = append(list, trimmed)
		}
	}
	return list
}
