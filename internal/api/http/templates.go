package http

import _ "embed"

const landingTemplateName = "index.html"

//go:embed templates/index.html
var landingTemplate string
