package message

// Namespaces of the declaration submission envelope
const (
	NsSOAPEnv     = "http://schemas.xmlsoap.org/soap/envelope/"
	NsWSS         = "http://schemas.xmlsoap.org/ws/2002/12/secext"
	NsAuth        = "http://at.pt/wsp/auth"
	NsDeclaration = "https://servicos.portaldasfinancas.gov.pt/dpivaws/DeclaracaoPeriodicaIVAWebService"
)

// SOAP actors of the two security headers
const (
	// ActorSPA addresses the taxpayer (filer) header
	ActorSPA = "http://at.pt/actor/SPA"
	// ActorTOC addresses the certified accountant header
	ActorTOC = "http://at.pt/actor/TOC"
)

const (
	// AuthVersion is the at:Version of the authentication profile
	AuthVersion = "2"
	// PasswordType is the wss:Password Type attribute value
	PasswordType = "wss:PasswordDigest"
	// DefaultDeclarationVersion is sent as versaoDeclaracao
	DefaultDeclarationVersion = "2016"
	// SubmitOperation is the body element of the submission request
	SubmitOperation = "submeterDeclaracaoPeriodicaIVARequest"
)
