package pdf

import (
	"bytes"
	"context"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type ApplicationSummaryData struct {
	PortalTitle string
	CycleTitle  string

	ApplicantName  string
	ApplicantEmail string
	ApplicantPhone string

	Status       string
	SubmittedAt  string
	Availability []string

	InterviewDate     string
	InterviewTime     string
	InterviewLocation string

	QA []QuestionAnswer
}

type QuestionAnswer struct {
	Question string
	Answer   string
}

type MarotoProvider struct{}

func New() Provider {
	return &MarotoProvider{}
}

func (p *MarotoProvider) GenerateApplicationSummary(ctx context.Context, data ApplicationSummaryData) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, data.PortalTitle, props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)
	m.AddRow(8,
		text.NewCol(12, "Application summary: "+data.CycleTitle, props.Text{
			Size: 12,
		}),
	)

	m.AddRow(30,
		col.New(6).Add(
			text.New("Applicant", props.Text{Style: fontstyle.Bold}),
			text.New(data.ApplicantName, props.Text{Top: 5}),
			text.New(data.ApplicantEmail, props.Text{Top: 10}),
			text.New(data.ApplicantPhone, props.Text{Top: 15}),
		),
		col.New(6).Add(
			text.New("Status", props.Text{Style: fontstyle.Bold}),
			text.New(data.Status, props.Text{Top: 5}),
			text.New("Submitted: "+data.SubmittedAt, props.Text{Top: 10}),
		),
	)

	m.AddRow(8,
		text.NewCol(12, "Interview availability", props.Text{Style: fontstyle.Bold, Size: 10}),
	)
	for _, slot := range data.Availability {
		m.AddRow(6,
			text.NewCol(12, "- "+slot, props.Text{Size: 9}),
		)
	}

	if data.InterviewDate != "" {
		m.AddRow(8,
			text.NewCol(12, "Confirmed interview", props.Text{Style: fontstyle.Bold, Size: 10}),
		)
		m.AddRow(6,
			text.NewCol(4, data.InterviewDate, props.Text{Size: 9}),
			text.NewCol(4, data.InterviewTime, props.Text{Size: 9}),
			text.NewCol(4, data.InterviewLocation, props.Text{Size: 9}),
		)
	}

	m.AddRow(10,
		text.NewCol(12, "Answers", props.Text{Style: fontstyle.Bold, Size: 10, Top: 3}),
	)
	for _, qa := range data.QA {
		m.AddRow(8,
			text.NewCol(12, qa.Question, props.Text{Style: fontstyle.Bold, Size: 9}),
		)
		m.AddRow(16,
			text.NewCol(12, qa.Answer, props.Text{Size: 9}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(doc.GetBytes()), nil
}
