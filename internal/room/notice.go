package room

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

const DefaultTradeNotice = "Trade bought"

// templateFuncs provides utility functions for notice templates.
var templateFuncs = sprig.TxtFuncMap()

// NoticeTemplate renders the text of a trade notice. Templates see the trade's
// BuyerId, SellerId and TradeId along with the SceneId it happened in.
type NoticeTemplate struct {
	raw  string
	tmpl *template.Template
}

type noticeData struct {
	TradeDetails
	SceneId string
}

func ParseNoticeTemplate(text string) (*NoticeTemplate, error) {
	if text == "" {
		text = DefaultTradeNotice
	}

	tmpl, err := template.New("trade").Funcs(templateFuncs).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing trade notice template: %w", err)
	}

	return &NoticeTemplate{raw: text, tmpl: tmpl}, nil
}

func (n *NoticeTemplate) Render(trade TradeDetails, sceneId string) (string, error) {
	var buf bytes.Buffer
	err := n.tmpl.Execute(&buf, noticeData{TradeDetails: trade, SceneId: sceneId})
	if err != nil {
		return "", fmt.Errorf("executing trade notice template: %w", err)
	}
	return buf.String(), nil
}
