// Package render formats classifications and the scan history as plain text lines.
package render

import (
	"fmt"
	"io"
	"strings"

	"easyfilter/pkg/catalog"
	"easyfilter/pkg/history"
)

// NoHistory is shown when the history is empty.
const NoHistory = "최근 스캔 기록이 없습니다."

// Lines renders a classification.
func Lines(res *catalog.Classification) []string {
	lines := []string{"바코드: " + res.Barcode}
	if res.Kind == catalog.KindKnown {
		return append(lines, recordLines(res.Record)...)
	}
	return append(lines, guidanceLines(res.Guidance)...)
}

func recordLines(rec *catalog.BarcodeRecord) []string {
	lines := []string{"필터 사용 모델 : " + strings.Join(rec.ApplicableModels, ", ")}
	for _, v := range rec.Variants {
		if v.Label != "" {
			lines = append(lines, "", "["+v.Label+"]")
		}
		lines = append(lines,
			"부품명 : "+v.PartName,
			"부품넘버 : "+v.PartNumber,
		)
		for _, u := range v.ImageURLs {
			lines = append(lines, "  이미지: "+u)
		}
	}
	for _, u := range rec.ImageURLs {
		lines = append(lines, "  이미지: "+u)
	}
	for _, n := range rec.Notes() {
		lines = append(lines, "※ "+n)
	}
	return lines
}

func guidanceLines(g catalog.Guidance) []string {
	lines := []string{"제품 정보: " + g.Product, "사용 분야:"}
	for _, u := range g.Usages {
		lines = append(lines, "  • "+u)
	}
	return append(lines, "확인 방법: "+g.Hint)
}

// HistoryLines renders the recent scans, newest first.
func HistoryLines(records []history.ScanRecord) []string {
	if len(records) == 0 {
		return []string{NoHistory}
	}
	lines := make([]string, len(records))
	for i, r := range records {
		lines[i] = fmt.Sprintf("%2d. %-14s %s", i+1, r.Barcode, r.DisplayTime)
	}
	return lines
}

// Write prints lines to w.
func Write(w io.Writer, lines []string) error {
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}
