package rod

const (
	BasicHTML = `<!DOCTYPE html>
<html>
<head><title>Test Page</title></head>
<body>
	<h1>Hello World</h1>
	<p>Some   text <a href="/next" id="next">Next page</a></p>
</body>
</html>`

	FormHTML = `<!DOCTYPE html>
<html>
<head><title>Login</title></head>
<body>
	<form id="testForm" onsubmit="event.preventDefault(); document.getElementById('result').textContent = 'Hello ' + document.getElementById('username').value;">
		<input id="username" type="text" name="username" placeholder="Username" />
		<input type="hidden" name="csrf" value="x" />
		<button id="submit" type="submit">Submit</button>
	</form>
	<div id="result"></div>
	<button style="display:none">Invisible</button>
</body>
</html>`

	ScrollableHTML = `<!DOCTYPE html>
<html>
<body style="height: 5000px;">
	<h1 id="top">Top of Page</h1>
</body>
</html>`
)
