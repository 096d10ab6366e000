package render

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var (
	headerBg   = &props.Color{Red: 0, Green: 102, Blue: 153}
	altBg      = &props.Color{Red: 240, Green: 244, Blue: 248}
	white      = &props.Color{Red: 255, Green: 255, Blue: 255}
	labelColor = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// GeneratePDF serializes the page model to PDF bytes.
func GeneratePDF(doc *Document) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Vertical).
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: "Página {current} de {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   labelColor,
		}).
		Build()

	m := maroto.New(cfg)

	addTitle(m, doc.Title)
	for _, sec := range doc.Sections {
		addSection(m, sec)
	}

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate pdf: %w", err)
	}
	return out.GetBytes(), nil
}

// WritePDF renders the document and writes it under dir with the standard
// artifact name. Returns the written path.
func WritePDF(doc *Document, dir, municipality string, now time.Time) (string, error) {
	data, err := GeneratePDF(doc)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, ArtifactName(municipality, now))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return path, nil
}

func addTitle(m core.Maroto, title string) {
	m.AddRows(
		row.New(14).Add(
			col.New(12).Add(
				text.New("Metodología General Ajustada - MGA", props.Text{
					Size:  8,
					Align: align.Center,
					Color: labelColor,
				}),
				text.New(title, props.Text{
					Top:   4,
					Size:  13,
					Style: fontstyle.Bold,
					Align: align.Center,
				}),
			),
		),
		row.New(4),
	)
}

func addSection(m core.Maroto, sec Section) {
	headerCell := &props.Cell{BackgroundColor: headerBg}
	m.AddRows(
		row.New(8).Add(
			col.New(12).Add(
				text.New(sec.Title, props.Text{
					Size:  10,
					Style: fontstyle.Bold,
					Align: align.Left,
					Left:  2,
					Color: white,
				}),
			).WithStyle(headerCell),
		),
		row.New(2),
	)

	for _, b := range sec.Blocks {
		switch b.Kind {
		case BlockHeading:
			size := 10.0 - float64(b.Level)
			if size < 7 {
				size = 7
			}
			m.AddRows(
				row.New(7).Add(
					col.New(12).Add(text.New(b.Text, props.Text{
						Size:  size,
						Style: fontstyle.Bold,
						Align: align.Left,
					})),
				),
			)
		case BlockParagraph:
			m.AddRows(
				text.NewAutoRow(b.Text, props.Text{
					Size:  8,
					Align: align.Left,
				}),
			)
		case BlockKeyValues:
			addKeyValues(m, b.Pairs)
		case BlockTable:
			addTable(m, b.Table)
		}
	}
	m.AddRows(row.New(3))
}

func addKeyValues(m core.Maroto, pairs []KV) {
	for _, kv := range pairs {
		m.AddRows(
			row.New(6).Add(
				col.New(4).Add(text.New(kv.Key, props.Text{
					Size:  8,
					Style: fontstyle.Bold,
					Align: align.Left,
					Color: labelColor,
				})),
				col.New(8).Add(text.New(kv.Value, props.Text{
					Size:  8,
					Align: align.Left,
				})),
			),
		)
	}
}

func addTable(m core.Maroto, tbl *Table) {
	if tbl == nil {
		return
	}
	headerText := props.Text{
		Size:  7,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: white,
	}
	headerCell := &props.Cell{BackgroundColor: headerBg}

	headerCols := make([]core.Col, 0, len(tbl.Header))
	for i, h := range tbl.Header {
		headerCols = append(headerCols, col.New(tbl.Widths[i]).Add(text.New(h, headerText)).WithStyle(headerCell))
	}
	m.AddRows(row.New(7).Add(headerCols...))

	for i, cells := range tbl.Rows {
		var cellStyle *props.Cell
		if i%2 == 1 {
			cellStyle = &props.Cell{BackgroundColor: altBg}
		}
		cols := make([]core.Col, 0, len(cells))
		for j, c := range cells {
			style := props.Text{Size: 7, Align: align.Left}
			if c.Bold {
				style.Style = fontstyle.Bold
			}
			cl := col.New(tbl.Widths[j]).Add(text.New(c.Text, style))
			if cellStyle != nil {
				cl = cl.WithStyle(cellStyle)
			}
			cols = append(cols, cl)
		}
		m.AddRows(row.New(6).Add(cols...))
	}
}
