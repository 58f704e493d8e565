package quote

import (
	"fmt"
	"strconv"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/page"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/diewo77/traiteur/internal/i18n"
)

var (
	titleText   = props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Center}
	headingText = props.Text{Size: 12, Style: fontstyle.Bold}
	bodyText    = props.Text{Size: 10}
	smallText   = props.Text{Size: 8, Style: fontstyle.Italic}
	amountText  = props.Text{Size: 10, Align: align.Right}
	strongRight = props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}
)

// Render lays the quote out on three pages: information, menus and the
// estimate.
func Render(q Quote) ([]byte, error) {
	cfg := config.NewBuilder().
		WithLeftMargin(15).
		WithRightMargin(15).
		WithTopMargin(15).
		Build()
	m := maroto.New(cfg)
	m.AddPages(
		page.New().Add(informationRows(q)...),
		page.New().Add(menuRows(q)...),
		page.New().Add(estimateRows(q)...),
	)
	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate quote pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

func header(q Quote, title string) []core.Row {
	return []core.Row{
		row.New(8).Add(text.NewCol(12, q.Company, headingText)),
		row.New(12).Add(text.NewCol(12, title, titleText)),
		row.New(4).Add(line.NewCol(12)),
	}
}

func informationRows(q Quote) []core.Row {
	rows := header(q, q.Title)
	rows = append(rows, row.New(10).Add(text.NewCol(12, i18n.T("quote.information"), headingText)))
	for _, kv := range q.Information {
		rows = append(rows, row.New(7).Add(
			text.NewCol(4, kv.Key, props.Text{Size: 10, Style: fontstyle.Bold}),
			text.NewCol(8, kv.Value, bodyText),
		))
	}
	return rows
}

func menuRows(q Quote) []core.Row {
	rows := header(q, i18n.T("quote.proposal"))
	rows = append(rows, row.New(10).Add(text.NewCol(12, i18n.T("quote.menus"), headingText)))
	for _, mb := range q.Menus {
		rows = append(rows, row.New(9).Add(text.NewCol(12, mb.Title, props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Center})))
		for i, g := range mb.Groups {
			if i > 0 {
				rows = append(rows, row.New(6).Add(text.NewCol(12, "***", props.Text{Size: 10, Align: align.Center})))
			}
			for _, dish := range g {
				rows = append(rows, row.New(6).Add(text.NewCol(12, dish, props.Text{Size: 10, Align: align.Center})))
			}
		}
		rows = append(rows, row.New(6).Add(col.New(12)))
	}
	return rows
}

func estimateRows(q Quote) []core.Row {
	rows := header(q, i18n.T("quote.estimate"))
	for _, s := range q.Estimate {
		rows = append(rows, row.New(8).Add(
			text.NewCol(9, s.Title, headingText),
			text.NewCol(3, Amount(s.Total), strongRight),
		))
		if s.Subtitle != "" {
			rows = append(rows, row.New(5).Add(text.NewCol(12, s.Subtitle, smallText)))
		}
		for _, it := range s.Items {
			rows = append(rows, itemRow(it))
		}
		rows = append(rows, row.New(3).Add(line.NewCol(12)))
	}
	rows = append(rows,
		row.New(10).Add(
			text.NewCol(9, i18n.T("quote.total"), headingText),
			text.NewCol(3, q.TotalLabel(), props.Text{Size: 12, Style: fontstyle.Bold, Align: align.Right}),
		),
		row.New(6).Add(col.New(12)),
	)
	for _, n := range q.Notes {
		rows = append(rows, row.New(5).Add(text.NewCol(12, n, props.Text{Size: 8})))
	}
	rows = append(rows,
		row.New(15).Add(col.New(12)),
		row.New(8).Add(text.NewCol(12, i18n.T("quote.signature"), bodyText)),
	)
	return rows
}

func itemRow(it Line) core.Row {
	quantity, price := "", ""
	if it.Quantity > 0 {
		quantity = "x" + strconv.Itoa(it.Quantity)
	}
	if it.Price > 0 {
		price = Amount(it.Price)
	}
	return row.New(6).Add(
		text.NewCol(6, it.Title, props.Text{Size: 10, Left: 4}),
		text.NewCol(2, quantity, amountText),
		text.NewCol(2, price, amountText),
		text.NewCol(2, Amount(it.Total), amountText),
	)
}
