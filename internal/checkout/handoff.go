package checkout

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/sheon-shop/storefront/internal/orders"
)

const separator = "*━━━━━━━━━━━━━━━*"

type labels struct {
	header, name, phone, address, qty, total string
}

var messageLabels = map[string]labels{
	"en": {"*📦 New Order from SHEON*", "Name", "Phone", "Address", "Qty", "Total"},
	"ar": {"*📦 طلب جديد من SHEON*", "الاسم", "الموبايل", "العنوان", "الكمية", "الإجمالي"},
}

// Message renders the text handed to the messaging channel for a placed order.
func Message(p orders.OrderPlacedPayload) string {
	lb, ok := messageLabels[p.Lang]
	if !ok {
		lb = messageLabels["en"]
	}
	var b strings.Builder
	b.WriteString(lb.header + "\n")
	fmt.Fprintf(&b, "*%s:* %s\n", lb.name, p.CustomerName)
	fmt.Fprintf(&b, "*%s:* %s\n", lb.phone, p.Phone)
	fmt.Fprintf(&b, "*%s:* %s\n", lb.address, p.Address)
	b.WriteString(separator + "\n")
	for i, l := range p.Lines {
		fmt.Fprintf(&b, "%d. *%s*\n %s: %d | %s EGP\n", i+1, l.Name, lb.qty, l.Qty(), money(float64(l.Price)))
	}
	b.WriteString(separator + "\n")
	fmt.Fprintf(&b, "*💰 %s: %s EGP*", lb.total, money(p.TotalPrice))
	return b.String()
}

// URL is the preformed link that opens the message in the channel.
func URL(phone, message string) string {
	return "https://wa.me/" + phone + "?text=" + strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
}

func money(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
