package ledger

import (
	"encoding/xml"
	"fmt"
)

// qbxmlHeader precedes every request payload. The qbxml processing
// instruction pins the wire format version the connector speaks.
const qbxmlHeader = `<?xml version="1.0" encoding="utf-8"?>` + "\n" +
	`<?qbxml version="16.0"?>` + "\n"

// StatusError is a non-success status returned inside a ledger response.
// Status codes 0 and 1 both mean success (1 is success-with-warning); any
// other code is an error carrying the connector's message.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ledger error (%d): %s", e.Code, e.Message)
}

// Request envelope.

type request struct {
	XMLName xml.Name `xml:"QBXML"`
	MsgsRq  msgsRq   `xml:"QBXMLMsgsRq"`
}

type msgsRq struct {
	OnError   string       `xml:"onError,attr"`
	BillQuery *billQueryRq `xml:"BillQueryRq,omitempty"`
	BillAdd   *billAddRq   `xml:"BillAddRq,omitempty"`
}

type billQueryRq struct {
	IncludeLineItems bool `xml:"IncludeLineItems"`
}

type billAddRq struct {
	BillAdd billAdd `xml:"BillAdd"`
}

type billAdd struct {
	VendorRef    nameRef          `xml:"VendorRef"`
	TxnDate      string           `xml:"TxnDate"`
	Memo         string           `xml:"Memo"`
	ExpenseLines []expenseLineAdd `xml:"ExpenseLineAdd"`
}

type nameRef struct {
	FullName string `xml:"FullName"`
}

type expenseLineAdd struct {
	AccountRef nameRef `xml:"AccountRef"`
	Amount     string  `xml:"Amount"`
	Memo       string  `xml:"Memo"`
}

// marshalRequest serializes a request with the qbXML header prepended.
// encoding/xml escapes the five XML metacharacters in every free-text field.
func marshalRequest(req request) (string, error) {
	body, err := xml.MarshalIndent(req, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal ledger request: %w", err)
	}
	return qbxmlHeader + string(body), nil
}

// Response envelope.

type response struct {
	XMLName xml.Name `xml:"QBXML"`
	MsgsRs  msgsRs   `xml:"QBXMLMsgsRs"`
}

type msgsRs struct {
	BillQuery *billQueryRs `xml:"BillQueryRs"`
	BillAdd   *billAddRs   `xml:"BillAddRs"`
}

type rsStatus struct {
	StatusCode    int    `xml:"statusCode,attr"`
	StatusMessage string `xml:"statusMessage,attr"`
}

// check returns a typed error unless the status code signals success.
func (s rsStatus) check() error {
	if s.StatusCode == 0 || s.StatusCode == 1 {
		return nil
	}
	return &StatusError{Code: s.StatusCode, Message: s.StatusMessage}
}

type billQueryRs struct {
	rsStatus
	Bills []billRet `xml:"BillRet"`
}

type billAddRs struct {
	rsStatus
}

type billRet struct {
	TxnID        string           `xml:"TxnID"`
	VendorRef    nameRef          `xml:"VendorRef"`
	TxnDate      string           `xml:"TxnDate"`
	DueDate      string           `xml:"DueDate"`
	AmountDue    string           `xml:"AmountDue"`
	Memo         string           `xml:"Memo"`
	ExpenseLines []expenseLineRet `xml:"ExpenseLineRet"`
}

type expenseLineRet struct {
	TxnLineID  string  `xml:"TxnLineID"`
	AccountRef nameRef `xml:"AccountRef"`
	Amount     string  `xml:"Amount"`
	Memo       string  `xml:"Memo"`
}

// parseResponse decodes a raw response and validates the status of whichever
// response block is present.
func parseResponse(raw string) (*response, error) {
	var rs response
	if err := xml.Unmarshal([]byte(raw), &rs); err != nil {
		return nil, fmt.Errorf("failed to parse ledger response: %w", err)
	}

	switch {
	case rs.MsgsRs.BillQuery != nil:
		if err := rs.MsgsRs.BillQuery.check(); err != nil {
			return nil, err
		}
	case rs.MsgsRs.BillAdd != nil:
		if err := rs.MsgsRs.BillAdd.check(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("ledger response missing status information")
	}

	return &rs, nil
}
