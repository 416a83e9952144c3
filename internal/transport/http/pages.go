package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

var landingPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8" />
<meta name="viewport" content="width=device-width, initial-scale=1.0" />
<title>PlaceBook</title>
<style>
body { font-family: Arial, sans-serif; margin: 0; background: #f4f1ea; color: #2b2b2b; }
header { padding: 48px 20px 24px; text-align: center; background: #2f5d50; color: #fff; }
form.search { margin-top: 16px; }
input { padding: 10px; border: 1px solid #ccc; border-radius: 4px; width: 220px; }
button { padding: 10px 18px; border: none; border-radius: 4px; cursor: pointer; background: #e0a526; color: #222; }
main { max-width: 760px; margin: 24px auto; padding: 0 16px; }
.place { background: #fff; border-radius: 6px; padding: 14px 18px; margin-bottom: 12px; box-shadow: 0 2px 6px rgba(0,0,0,0.08); }
.place small { color: #777; }
footer { text-align: center; padding: 20px; font-size: 13px; color: #777; }
</style>
</head>
<body>
<header>
  <h1>PlaceBook</h1>
  <p>Find places worth a visit, list your own.</p>
  <form class="search" onsubmit="return search(event)">
    <input name="q" placeholder="Search name or city" />
    <button type="submit">Search</button>
  </form>
</header>
<main id="places"></main>
<footer><a href="/swagger/index.html">API documentation</a></footer>
<script>
function render(items) {
  const root = document.getElementById('places');
  root.innerHTML = '';
  if (!items || items.length === 0) {
    root.textContent = 'No places found.';
    return;
  }
  for (const p of items) {
    const div = document.createElement('div');
    div.className = 'place';
    const title = document.createElement('h3');
    title.textContent = p.name;
    const meta = document.createElement('small');
    meta.textContent = p.city + ' · ' + (p.category || []).join(', ') + ' · ' + '$'.repeat(p.price_level || 1);
    div.appendChild(title);
    div.appendChild(meta);
    root.appendChild(div);
  }
}
async function load(query) {
  const response = await fetch('/api/v1/places' + (query ? '?q=' + encodeURIComponent(query) : ''));
  const body = await response.json();
  render(response.ok && body.data ? body.data.items : []);
}
function search(event) {
  event.preventDefault();
  load(new FormData(event.target).get('q'));
  return false;
}
load('');
</script>
</body>
</html>`

// RegisterPages serves the public landing page.
func RegisterPages(e *echo.Echo) {
	e.GET("/", func(c echo.Context) error {
		return c.HTML(http.StatusOK, landingPageHTML)
	})
}
