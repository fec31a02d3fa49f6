package templates

import (
	"context"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/gradebook/internal/auth"
)

// LoginParams fills the login form.
type LoginParams struct {
	Username string
	Error    string
	Notice   string
}

// LoginPage renders the login form.
func LoginPage(p LoginParams) templ.Component {
	body := component(func(ctx context.Context, h *htmlWriter) {
		h.child(ctx, Alert("info", p.Notice))
		h.child(ctx, Alert("error", p.Error))
		h.raw(`<section><form method="post" action="/login">`)
		h.raw(`<label for="username">Username</label><input id="username" name="username" required autocomplete="username"`)
		h.attr("value", p.Username)
		h.raw(`><label for="password">Password</label><input id="password" name="password" type="password" required autocomplete="current-password">`)
		h.raw(`<p><button type="submit">Log in</button></p></form>`)
		h.raw(`<p class="muted">No account yet? <a href="/signup">Sign up</a></p></section>`)
	})
	return Layout("Log in", nil, body)
}

// SignupParams fills the sign-up form.
type SignupParams struct {
	Username string
	Role     string
	Error    string
}

// SignupPage renders the sign-up form.
func SignupPage(p SignupParams) templ.Component {
	body := component(func(ctx context.Context, h *htmlWriter) {
		h.child(ctx, Alert("error", p.Error))
		h.raw(`<section><form method="post" action="/signup">`)
		h.raw(`<label for="username">Username</label><input id="username" name="username" required minlength="3" maxlength="64" autocomplete="username"`)
		h.attr("value", p.Username)
		h.raw(`><label for="password">Password</label><input id="password" name="password" type="password" required minlength="6" autocomplete="new-password">`)
		h.raw(`<label for="role">Role</label><select id="role" name="role">`)
		for _, r := range auth.Roles() {
			h.raw("<option")
			h.attr("value", r.String())
			if string(r) == p.Role {
				h.raw(" selected")
			}
			h.raw(">")
			h.text(r.Title())
			h.raw("</option>")
		}
		h.raw(`</select><p><button type="submit">Sign up</button></p></form>`)
		h.raw(`<p class="muted">Already registered? <a href="/login">Log in</a></p></section>`)
	})
	return Layout("Sign up", nil, body)
}
