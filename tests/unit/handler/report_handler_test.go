package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"britta/internal/domain"
	"britta/internal/handler"
	"britta/internal/service"
	"britta/mocks"
)

func TestReportHandler_List_Success(t *testing.T) {
	mockReportSvc := new(mocks.MockReportService)
	h := handler.NewReportHandler(mockReportSvc)

	userID := uuid.New()
	company := laddelCompany()
	summaries := []domain.ReportSummary{
		{ID: uuid.New(), CompanyID: company.ID, Period: "2025-11", VATToPay: 230},
		{ID: uuid.New(), CompanyID: company.ID, Period: "2025-10", VATToPay: 185},
	}

	mockReportSvc.On("List", mock.Anything, userID, company.ID, 0, 20).
		Return(summaries, 2, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/reports", http.NoBody)
	setAuthContext(c, userID)
	setCompanyContext(c, company)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp handler.APIResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.True(t, resp.Success)
	assert.NotNil(t, resp.Meta)
	assert.Equal(t, 2, resp.Meta.Total)
	mockReportSvc.AssertExpectations(t)
}

func TestReportHandler_List_NoCompanyContext(t *testing.T) {
	mockReportSvc := new(mocks.MockReportService)
	h := handler.NewReportHandler(mockReportSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/reports", http.NoBody)
	setAuthContext(c, uuid.New())

	h.List(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockReportSvc.AssertNumberOfCalls(t, "List", 0)
}

func TestReportHandler_GetByID_Success(t *testing.T) {
	mockReportSvc := new(mocks.MockReportService)
	h := handler.NewReportHandler(mockReportSvc)

	userID := uuid.New()
	messageID := uuid.New()
	report := &domain.VATReport{
		Type:   "vat_report",
		Period: "2025-11",
		Company: domain.ReportCompany{
			Name:      "Laddel AB",
			OrgNumber: "556036-0793",
		},
	}

	mockReportSvc.On("Get", mock.Anything, userID, messageID).Return(report, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/reports/"+messageID.String(), http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: messageID.String()}}
	setAuthContext(c, userID)

	h.GetByID(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp handler.APIResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.True(t, resp.Success)
	mockReportSvc.AssertExpectations(t)
}

func TestReportHandler_GetByID_InvalidID(t *testing.T) {
	mockReportSvc := new(mocks.MockReportService)
	h := handler.NewReportHandler(mockReportSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/reports/rapport-1", http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: "rapport-1"}}
	setAuthContext(c, uuid.New())

	h.GetByID(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockReportSvc.AssertNumberOfCalls(t, "Get", 0)
}

func TestReportHandler_GetByID_NotFound(t *testing.T) {
	mockReportSvc := new(mocks.MockReportService)
	h := handler.NewReportHandler(mockReportSvc)

	messageID := uuid.New()
	mockReportSvc.On("Get", mock.Anything, mock.Anything, messageID).
		Return(nil, domain.ErrNotFound)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/reports/"+messageID.String(), http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: messageID.String()}}
	setAuthContext(c, uuid.New())

	h.GetByID(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReportHandler_DownloadSIE_Success(t *testing.T) {
	mockReportSvc := new(mocks.MockReportService)
	h := handler.NewReportHandler(mockReportSvc)

	userID := uuid.New()
	messageID := uuid.New()
	export := &service.ReportExport{
		FileName:    "momsrapport-2025-11.sie",
		ContentType: "application/octet-stream",
		Data:        []byte("#FLAGGA 0\r\n#PROGRAM \"Britta\" 1.0\r\n"),
	}

	mockReportSvc.On("ExportSIE", mock.Anything, userID, messageID).Return(export, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/reports/"+messageID.String()+"/sie", http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: messageID.String()}}
	setAuthContext(c, userID)

	h.DownloadSIE(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="momsrapport-2025-11.sie"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "application/octet-stream", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("#FLAGGA 0")))
	mockReportSvc.AssertExpectations(t)
}

func TestReportHandler_DownloadSIE_NotFound(t *testing.T) {
	mockReportSvc := new(mocks.MockReportService)
	h := handler.NewReportHandler(mockReportSvc)

	messageID := uuid.New()
	mockReportSvc.On("ExportSIE", mock.Anything, mock.Anything, messageID).
		Return(nil, domain.ErrNotFound)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/reports/"+messageID.String()+"/sie", http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: messageID.String()}}
	setAuthContext(c, uuid.New())

	h.DownloadSIE(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReportHandler_DownloadCSV_Success(t *testing.T) {
	mockReportSvc := new(mocks.MockReportService)
	h := handler.NewReportHandler(mockReportSvc)

	userID := uuid.New()
	messageID := uuid.New()
	export := &service.ReportExport{
		FileName:    "momsrapport_2025-11_2025-12-01.csv",
		ContentType: "text/csv; charset=utf-8",
		Data:        []byte("\xEF\xBB\xBFTyp,Beskrivning\n"),
	}

	mockReportSvc.On("ExportCSV", mock.Anything, userID, messageID).Return(export, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/reports/"+messageID.String()+"/csv", http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: messageID.String()}}
	setAuthContext(c, userID)

	h.DownloadCSV(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="momsrapport_2025-11_2025-12-01.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	mockReportSvc.AssertExpectations(t)
}

func TestReportHandler_Email_Success(t *testing.T) {
	mockReportSvc := new(mocks.MockReportService)
	h := handler.NewReportHandler(mockReportSvc)

	userID := uuid.New()
	messageID := uuid.New()

	mockReportSvc.On("Email", mock.Anything, userID, messageID, "ekonomi@laddel.se").Return(nil)

	body, _ := json.Marshal(map[string]string{"email": "ekonomi@laddel.se"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/reports/"+messageID.String()+"/email", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: messageID.String()}}
	setAuthContext(c, userID)

	h.Email(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockReportSvc.AssertExpectations(t)
}

func TestReportHandler_Email_NoBodyDefaultsToAccountAddress(t *testing.T) {
	mockReportSvc := new(mocks.MockReportService)
	h := handler.NewReportHandler(mockReportSvc)

	userID := uuid.New()
	messageID := uuid.New()

	mockReportSvc.On("Email", mock.Anything, userID, messageID, "").Return(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/reports/"+messageID.String()+"/email", http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: messageID.String()}}
	setAuthContext(c, userID)

	h.Email(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockReportSvc.AssertExpectations(t)
}

func TestReportHandler_Email_InvalidAddress(t *testing.T) {
	mockReportSvc := new(mocks.MockReportService)
	h := handler.NewReportHandler(mockReportSvc)

	messageID := uuid.New()
	body, _ := json.Marshal(map[string]string{"email": "inte-en-adress"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/reports/"+messageID.String()+"/email", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: messageID.String()}}
	setAuthContext(c, uuid.New())

	h.Email(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockReportSvc.AssertNumberOfCalls(t, "Email", 0)
}
