package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/pterm/pterm"

	"github.com/project-tktt/bayt-crawler/internal/domain"
)

const notAvailable = "-"

func renderTable(jobs []domain.JobPost) (string, error) {
	data := pterm.TableData{{"#", "Title", "Company", "Location", "URL"}}
	for i, job := range jobs {
		company := notAvailable
		if job.CompanyName != nil {
			company = *job.CompanyName
		}
		location := job.Location.DisplayLocation()
		if location == "" {
			location = notAvailable
		}
		data = append(data, []string{fmt.Sprint(i + 1), job.Title, company, location, job.JobURL})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
}

func writeJSON(w io.Writer, resp domain.JobResponse) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

func summary(term string, found, wanted int, elapsed time.Duration) string {
	return fmt.Sprintf("Found %s %s for %q (requested %s) in %s",
		humanize.Comma(int64(found)), english.PluralWord(found, "job", ""),
		term, humanize.Comma(int64(wanted)), elapsed.Round(time.Millisecond))
}
