// Package export renders captured leads and archived submissions as xlsx
// workbooks for the clinic's back office.
package export

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/primedclinic/intake-service/internal/store"
)

type Service struct {
	leads store.LeadRepository
	subs  store.SubmissionRepository
}

func NewService(leads store.LeadRepository, subs store.SubmissionRepository) *Service {
	return &Service{leads: leads, subs: subs}
}

const timeLayout = "2006-01-02 15:04:05"

// Leads builds a workbook of contact enquiries, newest first.
func (s *Service) Leads(ctx context.Context) (*excelize.File, error) {
	leads, err := s.leads.List(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := "Leads"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headers := []string{"ID", "First Name", "Last Name", "Email", "Phone", "Assistance Type", "Message", "Created At"}
	if err := writeRow(f, sheet, 1, headers); err != nil {
		return nil, err
	}
	for i, lead := range leads {
		row := []string{
			fmt.Sprintf("%d", lead.ID),
			lead.FirstName,
			lead.LastName,
			lead.Email,
			lead.Phone,
			lead.AssistanceType,
			lead.Message,
			lead.CreatedAt.Format(timeLayout),
		}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Submissions builds a workbook of archived questionnaire payloads.
func (s *Service) Submissions(ctx context.Context) (*excelize.File, error) {
	subs, err := s.subs.List(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := "Submissions"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headers := []string{"ID", "Token", "Treatment", "Completed", "Answers", "Created At"}
	if err := writeRow(f, sheet, 1, headers); err != nil {
		return nil, err
	}
	for i, sub := range subs {
		completed := "no"
		if sub.IsCompleted {
			completed = "yes"
		}
		row := []string{
			fmt.Sprintf("%d", sub.ID),
			sub.Token,
			sub.TreatmentID,
			completed,
			string(sub.Answers),
			sub.CreatedAt.Format(timeLayout),
		}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func writeRow(f *excelize.File, sheet string, row int, values []string) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return err
		}
	}
	return nil
}
