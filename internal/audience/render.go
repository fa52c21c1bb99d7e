package audience

import (
	"regexp"
	"strings"
)

// Contact holds the lead attributes available to message shortcodes.
type Contact struct {
	Name    string
	Company string
	Phone   string
	Email   string
}

var shortcodePattern = regexp.MustCompile(`\{[a-zA-Z_]+\}`)

func (c Contact) shortcodes() map[string]string {
	firstName := ""
	if fields := strings.Fields(c.Name); len(fields) > 0 {
		firstName = fields[0]
	}
	return map[string]string{
		"name":          c.Name,
		"nome":          c.Name,
		"first_name":    firstName,
		"primeiro_nome": firstName,
		"company":       c.Company,
		"empresa":       c.Company,
		"phone":         c.Phone,
		"telefone":      c.Phone,
		"email":         c.Email,
	}
}

// RenderMessage substitutes the contact's shortcodes in template. Tokens are
// matched case-insensitively; unknown tokens render as the empty string.
// Substituted values are never re-scanned for tokens.
func RenderMessage(template string, c Contact) string {
	values := c.shortcodes()
	return shortcodePattern.ReplaceAllStringFunc(template, func(token string) string {
		key := strings.ToLower(token[1 : len(token)-1])
		return values[key]
	})
}
