package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"
)

//go:embed templates/enquiry.html
var templateFS embed.FS

var enquiryTmpl = template.Must(template.ParseFS(templateFS, "templates/enquiry.html"))

// Placeholder values the enquiry form submits when a select is untouched.
const (
	placeholderProductInterest = "Select Product Interest"
	placeholderIndustry        = "Select Industry"
)

// DateLayout formats the enquiry date line.
const DateLayout = "Mon Jan 02 15:04:05 MST 2006"

type row struct {
	Key   string
	Value string
}

type view struct {
	Title   string
	Date    string
	Name    string
	Email   string
	Phone   string
	MailTo  template.URL
	Tel     template.URL
	Message string
	Before  []row // rows between the date and the name
	After   []row // rows after the name
}

// RenderGeneral renders the HTML body for a general enquiry. Company,
// product interest, and industry rows appear only when set to a real
// value.
func RenderGeneral(e Enquiry, at time.Time) (string, error) {
	v := baseView("New Enquiry", e, at)

	if industry := strings.TrimSpace(e.Industry); industry != "" && industry != placeholderIndustry {
		v.Before = append(v.Before, row{"Industry", industry})
	}
	if interest := strings.TrimSpace(e.ProductInterest); interest != "" && interest != placeholderProductInterest {
		v.Before = append(v.Before, row{"Product Interest", interest})
	}
	if company := strings.TrimSpace(e.Company); company != "" {
		v.Before = append(v.Before, row{"Company", company})
	}

	return execute(v)
}

// RenderProduct renders the HTML body for an enquiry about one product.
// The product link points at the public storefront on domain.
func RenderProduct(e Enquiry, domain string, at time.Time) (string, error) {
	v := baseView("New Product Enquiry", e, at)
	v.After = append(v.After, row{"Product Link", ProductLink(domain, e.ProductID)})
	return execute(v)
}

// ProductLink returns the storefront URL of a product.
func ProductLink(domain, productID string) string {
	return "http://" + domain + "/products/" + url.PathEscape(productID)
}

func baseView(title string, e Enquiry, at time.Time) view {
	v := view{
		Title:   title,
		Date:    at.Format(DateLayout),
		Name:    e.Name,
		Email:   e.Email,
		Phone:   e.Phone,
		Message: e.Message,
	}
	if e.Email != "" {
		v.MailTo = template.URL("mailto:" + url.PathEscape(e.Email))
	}
	if digits := phoneDigits(e.Phone); digits != "" {
		v.Tel = template.URL("tel:+91" + digits)
	} else {
		v.Phone = ""
	}
	return v
}

func execute(v view) (string, error) {
	var buf bytes.Buffer
	if err := enquiryTmpl.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("rendering enquiry: %w", err)
	}
	return buf.String(), nil
}

// phoneDigits keeps only the digits of a phone number so it is safe to
// embed in a tel: URL.
func phoneDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
