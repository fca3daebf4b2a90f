/*
Package render turns a URL plus metadata into fully rendered, SEO friendly HTML.

Each call to Renderer.Render owns exactly one headless browser session:

 1. validate the request (absolute http/https URL)
 2. optionally wait for a session slot (Options.MaxSessions)
 3. launch a browser and open a page
 4. navigate and wait until the network is almost idle
 5. append one <meta property content> tag per metadata pair to <head>
 6. serialize the document and close the browser

The browser is closed on every path once launched. Failures are reported
as *Error carrying the Stage that failed.

Metadata decodes from a JSON object and keeps its key order:

	{"url": "https://example.com/app", "metadata": {"og:title": "Home", "og:type": "website"}}
*/
package render
