package rod

const indexAttr = "data-agent-index"

// indexElementsJS tags every visible interactive element with data-agent-index
// and returns their descriptions. Indexes are only valid until the next call.
const indexElementsJS = `(max) => {
	const selector = [
		'a[href]', 'button', 'input:not([type=hidden])', 'textarea', 'select',
		'[role=button]', '[role=link]', '[role=checkbox]', '[role=tab]', '[role=menuitem]',
		'[onclick]', '[contenteditable=true]',
	].join(',');
	document.querySelectorAll('[data-agent-index]').forEach(el => el.removeAttribute('data-agent-index'));
	const out = [];
	let index = 0;
	for (const el of document.querySelectorAll(selector)) {
		if (index >= max) break;
		const rect = el.getBoundingClientRect();
		const style = window.getComputedStyle(el);
		if (rect.width === 0 || rect.height === 0 || style.visibility === 'hidden' || style.display === 'none') continue;
		el.setAttribute('data-agent-index', String(index));
		const text = (el.innerText || el.value || '').replace(/\s+/g, ' ').trim();
		out.push({
			index: index,
			tag: el.tagName.toLowerCase(),
			type: el.getAttribute('type') || '',
			text: text.slice(0, 120),
			aria_label: el.getAttribute('aria-label') || '',
			placeholder: el.getAttribute('placeholder') || '',
			href: el.getAttribute('href') || '',
		});
		index++;
	}
	return out;
}`

const scrollJS = `(direction) => {
	switch (direction) {
	case 'down': window.scrollBy(0, window.innerHeight * 0.8); break;
	case 'up': window.scrollBy(0, -window.innerHeight * 0.8); break;
	case 'top': window.scrollTo(0, 0); break;
	case 'bottom': window.scrollTo(0, document.body.scrollHeight); break;
	}
}`
