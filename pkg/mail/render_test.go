package mail

import (
	"strings"
	"testing"
	"time"
)

var enquiryTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestRenderGeneral(t *testing.T) {
	html, err := RenderGeneral(Enquiry{
		Name:            "Asha Rao",
		Email:           "asha@example.com",
		Phone:           "98765 43210",
		Company:         "Rao Foods",
		ProductInterest: "Rotary Drum",
		Industry:        "Food Processing",
		Message:         "Please send a quote.",
	}, enquiryTime)
	if err != nil {
		t.Fatalf("RenderGeneral: %v", err)
	}

	for _, want := range []string{
		">New Enquiry<",
		"Sun Jun 01 12:00:00 UTC 2025",
		"Asha Rao",
		`href="mailto:asha@example.com"`,
		`href="tel:&#43;919876543210"`,
		"Please send a quote.",
		">Company<", "Rao Foods",
		">Product Interest<", "Rotary Drum",
		">Industry<", "Food Processing",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered HTML missing %q", want)
		}
	}

	// Rows sit between the date and the name, industry first.
	date := strings.Index(html, "enq-date")
	industry := strings.Index(html, ">Industry<")
	interest := strings.Index(html, ">Product Interest<")
	company := strings.Index(html, ">Company<")
	name := strings.Index(html, "cust-name")
	if !(date < industry && industry < interest && interest < company && company < name) {
		t.Errorf("row order wrong: date=%d industry=%d interest=%d company=%d name=%d",
			date, industry, interest, company, name)
	}
}

func TestRenderGeneral_SkipsPlaceholders(t *testing.T) {
	html, err := RenderGeneral(Enquiry{
		Name:            "Asha",
		Email:           "asha@example.com",
		ProductInterest: "Select Product Interest",
		Industry:        "Select Industry",
	}, enquiryTime)
	if err != nil {
		t.Fatalf("RenderGeneral: %v", err)
	}

	for _, unwanted := range []string{"Select Product Interest", "Select Industry", ">Company<", ">Industry<"} {
		if strings.Contains(html, unwanted) {
			t.Errorf("rendered HTML should not contain %q", unwanted)
		}
	}
	if strings.Contains(html, "call-now") {
		t.Error("call-now link rendered without a phone number")
	}
}

func TestRenderProduct(t *testing.T) {
	html, err := RenderProduct(Enquiry{
		Name:      "Asha",
		Phone:     "9876543210",
		Message:   "Interested",
		ProductID: "prod_abc",
		Company:   "Ignored Co",
	}, "bgmsons.example", enquiryTime)
	if err != nil {
		t.Fatalf("RenderProduct: %v", err)
	}

	if !strings.Contains(html, ">New Product Enquiry<") {
		t.Error("missing product enquiry title")
	}
	if !strings.Contains(html, "http://bgmsons.example/products/prod_abc") {
		t.Error("missing product link")
	}
	if strings.Index(html, ">Product Link<") < strings.Index(html, "cust-name") {
		t.Error("product link row should follow the name row")
	}
	if strings.Contains(html, "Ignored Co") {
		t.Error("product enquiries do not render the company row")
	}
	if strings.Contains(html, "reply-to") {
		t.Error("reply link rendered without an email")
	}
}

func TestRender_EscapesInput(t *testing.T) {
	html, err := RenderGeneral(Enquiry{
		Name:    `<script>alert(1)</script>`,
		Email:   "x@example.com",
		Message: `<img src=x onerror=alert(1)>`,
	}, enquiryTime)
	if err != nil {
		t.Fatalf("RenderGeneral: %v", err)
	}
	if strings.Contains(html, "<script>") || strings.Contains(html, "<img") {
		t.Error("user input was not escaped")
	}
}

func TestProductLink(t *testing.T) {
	got := ProductLink("shop.example", "prod 1/2")
	want := "http://shop.example/products/prod%201%2F2"
	if got != want {
		t.Errorf("ProductLink = %q, want %q", got, want)
	}
}
