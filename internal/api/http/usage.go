package http

import (
	"html/template"

	ginrender "github.com/gin-gonic/gin/render"
)

var usageTemplate = template.Must(template.New("usage").Parse(`<!DOCTYPE html>
<html lang="it">
<head>
<meta charset="utf-8">
<title>API SEO per SPA</title>
</head>
<body>
<h1>API SEO per SPA</h1>
<p>Usa POST /render per generare HTML ottimizzato</p>
<p>Esempio curl:</p>
<pre>
curl -X POST http://{{.Host}}/render \
-H "Content-Type: application/json" \
-d '{
  "url": "https://example.com",
  "metadata": {
    "og:title": "Titolo Test"
  }
}'
</pre>
</body>
</html>
`))

type usageData struct {
	Host string
}

func usagePage(host string) ginrender.HTML {
	return ginrender.HTML{
		Template: usageTemplate,
		Data:     usageData{Host: host},
	}
}
