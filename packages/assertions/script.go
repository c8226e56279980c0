package assertions

import (
	"fmt"
	"strings"
)

var scriptPreamble = []string{
	"let jsonData = null;",
	"try {",
	"    jsonData = pm.response.json();",
	"} catch (e) {",
	"    jsonData = null;",
	"}",
}

const notNullLine = "    pm.expect(jsonData, 'Response JSON').to.not.be.null;"

// Script renders statements as the lines of a collection test script. Every
// field statement re-checks the parsed body so a non-JSON response fails each
// one individually.
func Script(stmts []Statement) []string {
	if len(stmts) == 0 {
		return nil
	}
	lines := append([]string(nil), scriptPreamble...)
	for _, s := range stmts {
		lines = append(lines, fmt.Sprintf("pm.test('%s', function () {", escapeJS(s.Name)))
		switch s.Kind {
		case KindValidJSON:
			lines = append(lines, notNullLine)
		case KindStatus:
			lines = append(lines, fmt.Sprintf("    pm.response.to.have.status(%d);", s.Status))
		case KindField:
			chain := operators[s.Operator].expect
			if s.Operator.takesValue() {
				chain = fmt.Sprintf(chain, s.ExpectedJSON)
			}
			lines = append(lines,
				notNullLine,
				fmt.Sprintf("    pm.expect(_.get(jsonData, '%s')).%s;", escapeJS(s.Field), chain),
			)
		}
		lines = append(lines, "});")
	}
	return lines
}

var jsEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`)

func escapeJS(s string) string {
	return jsEscaper.Replace(s)
}
