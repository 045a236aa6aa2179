package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/itechs-edu/exam-service/internal/services"
	"github.com/itechs-edu/exam-service/internal/utils"
)

type ExamHandler struct {
	BaseHandler
	examService   services.ExamService
	reportService services.ReportService
}

func NewExamHandler(examService services.ExamService, reportService services.ReportService, logger utils.Logger) *ExamHandler {
	return &ExamHandler{
		BaseHandler:   NewBaseHandler(logger),
		examService:   examService,
		reportService: reportService,
	}
}

func (h *ExamHandler) CreateExam(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		h.Error(c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	var req services.CreateExamRequest
	if !h.BindJSON(c, &req) {
		return
	}

	exam, err := h.examService.Create(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "exam created", "exam_id", exam.ID, "exam_code", exam.ExamCode)
	h.Success(c, http.StatusCreated, "Exam created", exam)
}

func (h *ExamHandler) GetExam(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		h.Error(c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	exam, err := h.examService.GetByID(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.Success(c, http.StatusOK, "", exam)
}

// GetExamByCode previews an exam from its join code. Authentication is
// optional; the preview carries no questions.
func (h *ExamHandler) GetExamByCode(c *gin.Context) {
	actor, _ := currentUser(c)

	exam, err := h.examService.GetByCode(c.Request.Context(), actor, c.Param("examCode"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.Success(c, http.StatusOK, "", exam)
}

func (h *ExamHandler) ListExams(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		h.Error(c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	query := services.ExamListQuery{Search: c.Query("search")}
	query.Limit, query.Offset = paginationParams(c)
	if v := c.Query("active"); v == "true" || v == "false" {
		active := v == "true"
		query.IsActive = &active
	}

	resp, err := h.examService.List(c.Request.Context(), actor, query)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.Success(c, http.StatusOK, "", resp)
}

func (h *ExamHandler) UpdateExam(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		h.Error(c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	var req services.UpdateExamRequest
	if !h.BindJSON(c, &req) {
		return
	}

	exam, err := h.examService.Update(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.Success(c, http.StatusOK, "Exam updated", exam)
}

func (h *ExamHandler) DeleteExam(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		h.Error(c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	if err := h.examService.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.Success(c, http.StatusOK, "Exam deleted", nil)
}

// JoinExam enrolls the calling student by exam code.
func (h *ExamHandler) JoinExam(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		h.Error(c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	var req services.JoinExamRequest
	if !h.BindJSON(c, &req) {
		return
	}

	exam, err := h.examService.Join(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "student joined exam", "exam_id", exam.ID, "student_id", actor.ID)
	h.Success(c, http.StatusOK, "Joined exam successfully", exam)
}

func (h *ExamHandler) GetStatistics(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		h.Error(c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	stats, err := h.examService.Statistics(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.Success(c, http.StatusOK, "", stats)
}

// ExportScores streams the score sheet as an xlsx download.
func (h *ExamHandler) ExportScores(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		h.Error(c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	filename, content, err := h.reportService.ExportScores(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", content)
}
