package message

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirosfoundation/go-dpiva/pkg/transport"
)

const successResponse = `<?xml version="1.0" encoding="UTF-8"?>
<S:Envelope xmlns:S="http://schemas.xmlsoap.org/soap/envelope/">
  <S:Body>
    <ns2:submeterDeclaracaoPeriodicaIVAResponse xmlns:ns2="https://servicos.portaldasfinancas.gov.pt/dpivaws/DeclaracaoPeriodicaIVAWebService">
      <codigo>0</codigo>
      <mensagem>Declaracao submetida</mensagem>
      <dadosSubmissao>
        <data>2024-02-01</data>
        <ano>2024</ano>
        <periodo>01M</periodo>
        <idDeclaracao>X123</idDeclaracao>
        <contribuinte><nif>599999993</nif></contribuinte>
        <contribuinte><nif>123456789</nif></contribuinte>
      </dadosSubmissao>
    </ns2:submeterDeclaracaoPeriodicaIVAResponse>
  </S:Body>
</S:Envelope>`

const errorResponse = `<S:Envelope xmlns:S="http://schemas.xmlsoap.org/soap/envelope/">
  <S:Body>
    <ns2:submeterDeclaracaoPeriodicaIVAResponse xmlns:ns2="urn:x">
      <codigo>-3</codigo>
      <mensagem>Declaracao com erros</mensagem>
      <erros>
        <erro><anexo>A</anexo><quadro>1</quadro><codigo>42</codigo><mensagem>Invalid</mensagem></erro>
        <erro><anexo>B</anexo><quadro>2</quadro><codigo>43</codigo><mensagem>Ignored</mensagem></erro>
        <temMaisErros>false</temMaisErros>
      </erros>
    </ns2:submeterDeclaracaoPeriodicaIVAResponse>
  </S:Body>
</S:Envelope>`

func respond(status int, body string) *transport.Response {
	return &transport.Response{StatusCode: status, StatusMessage: "OK", Body: []byte(body)}
}

func TestParseResponse_Success(t *testing.T) {
	outcome, err := ParseResponse(respond(200, successResponse))
	require.NoError(t, err)

	assert.True(t, outcome.OK())
	assert.Equal(t, "0", outcome.Code)
	require.NotNil(t, outcome.Submission)
	assert.Equal(t, "X123", outcome.Submission.DeclarationID)
	assert.Equal(t, []string{"599999993", "123456789"}, outcome.Submission.TaxpayerNIFs)
	assert.Equal(t,
		"Data: 2024-02-01\nAno: 2024\nPeriodo: 01M\nidDeclaracao: X123\nContribuinte: 599999993\nTOC: 123456789",
		outcome.Message)
}

func TestParseResponse_SuccessWithoutAccountant(t *testing.T) {
	body := `<Envelope><Body><submeterResponse><codigo>0</codigo><dadosSubmissao>` +
		`<data>d</data><ano>2024</ano><periodo>02M</periodo><idDeclaracao>Y</idDeclaracao>` +
		`<contribuinte><nif>599999993</nif></contribuinte></dadosSubmissao></submeterResponse></Body></Envelope>`

	outcome, err := ParseResponse(respond(200, body))
	require.NoError(t, err)
	assert.True(t, outcome.OK())
	assert.Equal(t, "Data: d\nAno: 2024\nPeriodo: 02M\nidDeclaracao: Y\nContribuinte: 599999993\nTOC: ", outcome.Message)
}

func TestParseResponse_ValidationErrors(t *testing.T) {
	outcome, err := ParseResponse(respond(200, errorResponse))
	require.NoError(t, err)

	assert.False(t, outcome.OK())
	assert.Equal(t, "-3", outcome.Code)
	require.NotNil(t, outcome.Errors)
	assert.Equal(t, "42", outcome.Errors.Code)
	assert.Equal(t, "(A - 1 - 42): Invalid. Tem mais erros: false", outcome.Message)
}

func TestParseResponse_MessageOnly(t *testing.T) {
	body := `<Envelope><Body><xResponse><codigo>-1</codigo><mensagem> NIF invalido </mensagem></xResponse></Body></Envelope>`

	outcome, err := ParseResponse(respond(500, body))
	require.NoError(t, err)
	assert.False(t, outcome.OK())
	assert.Equal(t, "-1", outcome.Code)
	assert.Equal(t, "NIF invalido", outcome.Message)
	assert.Nil(t, outcome.Submission)
	assert.Nil(t, outcome.Errors)
}

func TestParseResponse_MissingCode(t *testing.T) {
	body := `<Envelope><Body><xResponse><mensagem>?</mensagem></xResponse></Body></Envelope>`

	outcome, err := ParseResponse(respond(200, body))
	require.NoError(t, err)
	assert.Equal(t, "", outcome.Code)
	assert.False(t, outcome.OK())
}

func TestParseResponse_ProtocolErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		reason string
	}{
		{"not xml", "<<<not xml", "response is not XML"},
		{"plain text", "Service Unavailable", "empty response"},
		{"empty", "", "empty response"},
		{"html", "<html><body>error</body></html>", "missing SOAP body"},
		{"no body", "<Envelope><Header/></Envelope>", "missing SOAP body"},
		{"empty body", "<Envelope><Body/></Envelope>", "missing response element"},
		{"other element", "<Envelope><Body><submeterRequest/></Body></Envelope>", "missing response element"},
		{
			"fault",
			`<S:Envelope xmlns:S="http://schemas.xmlsoap.org/soap/envelope/"><S:Body><S:Fault>` +
				`<faultcode>S:Server</faultcode><faultstring>Internal</faultstring></S:Fault></S:Body></S:Envelope>`,
			"missing response element",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, err := ParseResponse(&transport.Response{
				StatusCode:    503,
				StatusMessage: "Service Unavailable",
				Body:          []byte(tt.body),
			})
			assert.Nil(t, outcome)

			var perr *ProtocolError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.reason, perr.Reason)
			assert.Equal(t, 503, perr.StatusCode)
			assert.Equal(t, tt.body, perr.Body)
			assert.Contains(t, err.Error(), "HTTP 503 Service Unavailable")
		})
	}
}

func TestParseResponse_FaultDetail(t *testing.T) {
	body := `<Envelope><Body><Fault><faultcode>Client</faultcode><faultstring>Bad auth</faultstring></Fault></Body></Envelope>`

	_, err := ParseResponse(respond(500, body))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SOAP fault Client: Bad auth")
}

func TestParseResponse_Nil(t *testing.T) {
	_, err := ParseResponse(nil)
	var perr *ProtocolError
	assert.True(t, errors.As(err, &perr))
}
