package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/sirupsen/logrus"

	"attendance-now/internal/domain"
	"attendance-now/internal/repository"
)

// 导出格式。
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

// ExportResult 是导出操作的产物：完整物化的字节流和 HTTP 响应元数据。
type ExportResult struct {
	Data        []byte
	ContentType string
	Filename    string
}

// ExportService 负责将签到记录渲染为 CSV / PDF。
type ExportService struct {
	meetingRepo  repository.MeetingRepository
	attendeeRepo repository.AttendeeRepository
}

// NewExportService 创建 ExportService 实例。
func NewExportService(meetingRepo repository.MeetingRepository, attendeeRepo repository.AttendeeRepository) *ExportService {
	if meetingRepo == nil {
		panic("MeetingRepository cannot be nil for ExportService")
	}
	if attendeeRepo == nil {
		panic("AttendeeRepository cannot be nil for ExportService")
	}
	return &ExportService{meetingRepo: meetingRepo, attendeeRepo: attendeeRepo}
}

// ExportAttendees 验证管理密钥后导出签到记录。
// 不分页：整个数据集在一次调用中物化。
func (s *ExportService) ExportAttendees(ctx context.Context, meetingID, secret, format string) (*ExportResult, error) {
	logCtx := logrus.WithFields(logrus.Fields{"meeting_id": meetingID, "format": format})

	format = strings.ToLower(strings.TrimSpace(format))
	if format != FormatCSV && format != FormatPDF {
		logCtx.Warn("ExportAttendees: Unsupported format requested")
		return nil, fmt.Errorf("%w: %q", ErrInvalidExportFormat, format)
	}

	meeting, err := authorizeMeeting(ctx, s.meetingRepo, meetingID, secret)
	if err != nil {
		logCtx.WithError(err).Warn("ExportAttendees: Authorization failed")
		return nil, err
	}

	attendees, err := s.attendeeRepo.FindByMeeting(ctx, meetingID)
	if err != nil {
		logCtx.WithError(err).Error("ExportAttendees: Repository error")
		return nil, ErrInternalServer
	}

	var result *ExportResult
	switch format {
	case FormatCSV:
		result, err = renderCSV(meeting, attendees)
	case FormatPDF:
		result, err = renderPDF(meeting, attendees)
	}
	if err != nil {
		logCtx.WithError(err).Error("ExportAttendees: Rendering failed")
		return nil, ErrInternalServer
	}

	logCtx.WithField("attendee_count", len(attendees)).Info("Attendee export generated")
	return result, nil
}

// renderCSV 生成表头 (name, timestamp) 加每条签到一行的 CSV。
func renderCSV(meeting *domain.Meeting, attendees []domain.Attendee) (*ExportResult, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"name", "timestamp"}); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, att := range attendees {
		if err := w.Write([]string{att.Name, att.Timestamp.Format(time.RFC3339)}); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}

	return &ExportResult{
		Data:        buf.Bytes(),
		ContentType: "text/csv",
		Filename:    fmt.Sprintf("attendance-%s.csv", meeting.ID),
	}, nil
}

// renderPDF 生成签到记录的可读 PDF，包含签名缩略图。
func renderPDF(meeting *domain.Meeting, attendees []domain.Attendee) (*ExportResult, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(meeting.Title, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, fmt.Sprintf("Attendance: %s", meeting.Title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Meeting ID: %s    Generated: %s    Attendees: %d",
		meeting.ID, time.Now().Format("2006-01-02 15:04"), len(attendees)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// 表头
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(10, 8, "#", "1", 0, "C", true, 0, "")
	pdf.CellFormat(80, 8, "Name", "1", 0, "L", true, 0, "")
	pdf.CellFormat(50, 8, "Checked in", "1", 0, "L", true, 0, "")
	pdf.CellFormat(50, 8, "Signature", "1", 1, "C", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for i, att := range attendees {
		rowHeight := 14.0
		pdf.CellFormat(10, rowHeight, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(80, rowHeight, att.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, rowHeight, att.Timestamp.Format("2006-01-02 15:04:05"), "1", 0, "L", false, 0, "")

		x, y := pdf.GetXY()
		pdf.CellFormat(50, rowHeight, "", "1", 1, "C", false, 0, "")
		embedSignature(pdf, att, x, y, 46, rowHeight-2)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}

	return &ExportResult{
		Data:        buf.Bytes(),
		ContentType: "application/pdf",
		Filename:    fmt.Sprintf("attendance-%s.pdf", meeting.ID),
	}, nil
}

// embedSignature 将签名 PNG 嵌入到当前行的签名单元格中。
// 解码失败时跳过图片，单元格留空。
func embedSignature(pdf *gofpdf.Fpdf, att domain.Attendee, x, y, w, h float64) {
	if !strings.HasPrefix(att.Signature, "data:image/png") {
		return
	}
	raw, err := decodeSignature(att.Signature)
	if err != nil {
		logrus.WithError(err).WithField("attendee_id", att.ID).Warn("Skipping undecodable signature in PDF export")
		return
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("sig-"+att.ID, opts, bytes.NewReader(raw))
	pdf.ImageOptions("sig-"+att.ID, x+2, y+1, w, h, false, opts, 0, "")
}
