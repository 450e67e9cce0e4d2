// Package i18n holds the user-visible strings in English and Vietnamese.
package i18n

import (
	"errors"

	"github.com/harrisonrobin/baronboard/pkg/extract"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// English keys with their Vietnamese translations.
var vietnamese = map[string]string{
	"Task Dashboard":                    "Bảng theo dõi Task",
	"Filter by STATUS: ":                "Lọc theo STATUS: ",
	"All":                               "Tất cả",
	"Status share of tasks":             "Tỷ lệ STATUS các Task",
	"Tasks per month":                   "Số lượng Task theo tháng",
	"Month":                             "Tháng",
	"Number of tasks":                   "Số lượng Task",
	"Nothing to chart":                  "Không có dữ liệu để vẽ biểu đồ",
	"Total tasks":                       "Tổng số Task",
	"Tasks with images":                 "Task có hình ảnh",
	"Completed":                         "Hoàn thành",
	"Delayed":                           "Trễ hạn",
	"Charts":                            "Biểu đồ",
	"Table":                             "Bảng",
	"Gallery":                           "Hình ảnh",
	"Upload":                            "Tải lên",
	"Choose a task spreadsheet (.xlsx)": "Chọn file Excel task (.xlsx)",
	"Download CSV":                      "Tải CSV",
	"Requester":                         "Người yêu cầu",
	"Search":                            "Tìm kiếm",
	"Apply":                             "Áp dụng",
	"No images in this view":            "Không có hình ảnh",
	"Upload a spreadsheet to start":     "Tải file Excel lên để bắt đầu",
	"Reference date: %s":                "Ngày tham chiếu: %s",
	"Source: %s":                        "Nguồn: %s",
	"The file could not be read as a spreadsheet.":                           "Không đọc được file Excel.",
	"No task header was found. Expected TASK, START DATE, DUE DATE columns.": "Không tìm thấy dòng tiêu đề. Cần các cột TASK, START DATE, DUE DATE.",
	"The upload is too large.":                                               "File tải lên quá lớn.",
	"No file was uploaded.":                                                  "Chưa chọn file.",
	"Could not load the task sheet: %v":                                      "Không tải được bảng task: %v",
}

var (
	supported = []language.Tag{language.English, language.Vietnamese}
	matcher   = language.NewMatcher(supported)
	cat       = catalog.NewBuilder(catalog.Fallback(language.English))
)

func init() {
	for key, vi := range vietnamese {
		_ = cat.SetString(language.English, key, key)
		_ = cat.SetString(language.Vietnamese, key, vi)
	}
}

// Printer formats messages for one locale.
type Printer struct {
	Tag language.Tag
	p   *message.Printer
}

// New returns a printer for locale, e.g. "en" or "vi". Unknown locales get
// English.
func New(locale string) *Printer {
	tag := language.English
	if t, err := language.Parse(locale); err == nil {
		_, idx, conf := matcher.Match(t)
		if conf != language.No {
			tag = supported[idx]
		}
	}
	return &Printer{Tag: tag, p: message.NewPrinter(tag, message.Catalog(cat))}
}

// T translates key and formats args into it.
func (p *Printer) T(key string, args ...any) string {
	return p.p.Sprintf(key, args...)
}

// Number formats n with locale digit grouping.
func (p *Printer) Number(n int) string {
	return p.p.Sprintf("%d", n)
}

// Error turns a load failure into a message fit for the user.
func (p *Printer) Error(err error) string {
	switch {
	case errors.Is(err, extract.ErrHeaderNotFound):
		return p.T("No task header was found. Expected TASK, START DATE, DUE DATE columns.")
	case errors.Is(err, extract.ErrUnreadable):
		return p.T("The file could not be read as a spreadsheet.")
	}
	return p.T("Could not load the task sheet: %v", err)
}
