package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalRequest_EscapesMetacharacters(t *testing.T) {
	payload, err := marshalRequest(request{
		MsgsRq: msgsRq{
			OnError: "stopOnError",
			BillAdd: &billAddRq{BillAdd: billAdd{
				VendorRef: nameRef{FullName: `A & B <"quoted"> 'co'`},
				TxnDate:   "2025-09-01",
				Memo:      "x < y",
			}},
		},
	})
	require.NoError(t, err)

	assert.Contains(t, payload, `<?qbxml version="16.0"?>`)
	assert.Contains(t, payload, "A &amp; B &lt;&#34;quoted&#34;&gt; &#39;co&#39;")
	assert.Contains(t, payload, "x &lt; y")
	assert.NotContains(t, payload, `<FullName>A & B`)
}

func TestParseResponse_StatusHandling(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{
			name: "status zero is success",
			raw:  `<QBXML><QBXMLMsgsRs><BillQueryRs statusCode="0"/></QBXMLMsgsRs></QBXML>`,
		},
		{
			name: "status one is success with warning",
			raw:  `<QBXML><QBXMLMsgsRs><BillQueryRs statusCode="1" statusMessage="warn"/></QBXMLMsgsRs></QBXML>`,
		},
		{
			name:    "any other status is an error",
			raw:     `<QBXML><QBXMLMsgsRs><BillQueryRs statusCode="3120" statusMessage="Object not found"/></QBXMLMsgsRs></QBXML>`,
			wantErr: true,
		},
		{
			name:    "missing status information",
			raw:     `<QBXML><QBXMLMsgsRs></QBXMLMsgsRs></QBXML>`,
			wantErr: true,
		},
		{
			name:    "malformed xml",
			raw:     `<QBXML><QBXMLMsgsRs>`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseResponse(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseResponse_StatusErrorDetails(t *testing.T) {
	_, err := parseResponse(`<QBXML><QBXMLMsgsRs><BillAddRs statusCode="3140" statusMessage="Invalid reference"/></QBXMLMsgsRs></QBXML>`)

	var status *StatusError
	require.ErrorAs(t, err, &status)
	assert.Equal(t, 3140, status.Code)
	assert.Equal(t, "Invalid reference", status.Message)
	assert.Contains(t, status.Error(), "3140")
}
