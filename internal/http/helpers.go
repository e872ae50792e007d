package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"finflow/internal/core"
	applog "finflow/internal/log"
	"finflow/internal/vnwords"
)

const (
	msgRateLimited      = "Bạn thao tác quá nhanh, vui lòng thử lại sau"
	msgInternal         = "Đã xảy ra lỗi, vui lòng thử lại"
	msgBadRequest       = "Yêu cầu không hợp lệ"
	msgTxCreated        = "Đã thêm giao dịch"
	msgTxUpdated        = "Đã cập nhật giao dịch"
	msgTxDeleted        = "Đã xóa giao dịch"
	msgCategoryCreated  = "Đã thêm danh mục"
	msgCategoryUpdated  = "Đã cập nhật danh mục"
	msgCategoryDeleted  = "Đã xóa danh mục"
	msgTemplatesMissing = "templates not loaded"
)

// userMessages maps domain errors to what the user reads.
var userMessages = []struct {
	err error
	msg string
}{
	{core.ErrInvalidAmount, "Số tiền không hợp lệ"},
	{core.ErrInvalidType, "Loại giao dịch không hợp lệ"},
	{core.ErrInvalidDate, "Ngày không hợp lệ"},
	{core.ErrInvalidColor, "Màu không hợp lệ"},
	{core.ErrInvalidPeriod, "Tháng không hợp lệ"},
	{core.ErrEmptyName, "Tên danh mục không được để trống"},
	{core.ErrEmptyCategory, "Vui lòng chọn danh mục"},
	{core.ErrDescriptionTooLong, "Mô tả tối đa 200 ký tự"},
	{core.ErrNameTooLong, "Tên danh mục tối đa 50 ký tự"},
	{core.ErrCategoryInUse, "Không thể xóa danh mục đang có giao dịch"},
	{core.ErrCategoryNotFound, "Không tìm thấy danh mục"},
	{core.ErrTransactionNotFound, "Không tìm thấy giao dịch"},
	{core.ErrAmountOverflow, "Tổng số tiền vượt quá giới hạn"},
	{vnwords.ErrInvalidArgument, "Số tiền không hợp lệ"},
	{vnwords.ErrOutOfRange, "Số tiền vượt quá giới hạn"},
}

func userMessage(err error) string {
	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return msgInternal
}

func isValidation(err error) bool {
	for _, target := range []error{
		core.ErrInvalidAmount, core.ErrInvalidType, core.ErrInvalidDate,
		core.ErrInvalidColor, core.ErrInvalidPeriod, core.ErrEmptyName,
		core.ErrEmptyCategory, core.ErrDescriptionTooLong, core.ErrNameTooLong,
		vnwords.ErrInvalidArgument, vnwords.ErrOutOfRange,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// statusFor maps a service error to an HTTP status.
func statusFor(err error) int {
	switch {
	case isValidation(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrCategoryInUse):
		return http.StatusConflict
	case errors.Is(err, core.ErrCategoryNotFound), errors.Is(err, core.ErrTransactionNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs server-side failures and answers with an HTML error
// fragment plus a notification trigger.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, op string) {
	status := statusFor(err)
	msg := userMessage(err)
	logger := applog.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		applog.NewStructuredLogger(logger).LogError(r.Context(), "Request failed", err, op,
			applog.NewFields().WithHTTPRequest(r.Method, r.URL.Path, "", ""))
	} else {
		logger.WarnContext(r.Context(), "Request rejected",
			applog.FieldOperation, op,
			applog.FieldStatusCode, status,
			applog.FieldError, err)
	}
	ErrorResponse(status, msg).TriggerErrorNotification(msg).Write(w)
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// parseDate reads a YYYY-MM-DD date in local time. An empty value means
// today.
func parseDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.Local), nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, core.ErrInvalidDate
	}
	return t, nil
}

// sanitizeInput trims whitespace and drops control characters other than
// tab and line breaks.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}
