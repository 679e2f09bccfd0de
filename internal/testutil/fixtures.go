// internal/testutil/fixtures.go
package testutil

// Fixture data para tests (valores primitivos solamente, sin dependencias de domain)

// FixtureArticle es un artículo neutral con citas y atribuciones.
const FixtureArticle = `The city council approved the transit budget on Tuesday after a four-hour session.
"We expect construction to begin next spring," said council member Ana Ortiz.
According to the annual report published by the transportation department, ridership grew 12 percent.
Officials said the plan would be reviewed again in March.`

// FixtureSensational es un texto con lenguaje cargado y patrones de clickbait.
const FixtureSensational = `SHOCKING!!! You won't believe what they are hiding from you!
This disgraceful, corrupt scheme is the worst disaster ever. Act now before it's too late!
Everyone knows the radical elites always lie. Share this before they delete it!!!`

// FixtureHTML es un artículo en HTML con enlaces, citas y referencias.
const FixtureHTML = `<html><body><article>
<h1>Transit budget approved</h1>
<p>The council approved the budget, <a href="https://city.example.gov/report.pdf">according to the report</a>.</p>
<blockquote>"We expect construction to begin next spring."</blockquote>
<p>Ridership data from <a href="https://stats.example.org/ridership">the statistics office</a> shows growth.</p>
<p><a href="/related">Related story</a></p>
<cite>Annual Transportation Report, 2024</cite>
</article></body></html>`

// FixtureDomains contiene dominios de publicadores de prueba.
var FixtureDomains = []string{
	"example.com",
	"news.example.com",
	"bbc.co.uk",
}

// FixtureInvalidDomains contiene dominios inválidos.
var FixtureInvalidDomains = []string{
	"not a domain",
	"192.168.1.1",
	"-invalid.com",
}
