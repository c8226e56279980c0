package executor

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// ParseReport reads the executions from a newman JSON report.
func ParseReport(data []byte) ([]Execution, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("runner report is not valid JSON")
	}
	executions := gjson.GetBytes(data, "run.executions")
	if !executions.Exists() {
		return nil, fmt.Errorf("runner report has no run.executions")
	}

	var out []Execution
	executions.ForEach(func(_, exec gjson.Result) bool {
		e := Execution{
			ItemID:       exec.Get("item.id").String(),
			Name:         exec.Get("item.name").String(),
			Method:       exec.Get("request.method").String(),
			URL:          reportURL(exec.Get("request.url")),
			ResponseTime: time.Duration(exec.Get("response.responseTime").Int()) * time.Millisecond,
			RequestError: exec.Get("requestError.message").String(),
		}
		if code := exec.Get("response.code"); code.Exists() && code.Type == gjson.Number {
			n := int(code.Int())
			e.Code = &n
		}
		exec.Get("assertions").ForEach(func(_, a gjson.Result) bool {
			errResult := a.Get("error")
			failed := errResult.Exists() && errResult.Type != gjson.Null
			msg := errResult.Get("message").String()
			if failed && msg == "" {
				msg = errResult.String()
			}
			e.Assertions = append(e.Assertions, Assertion{
				Name:   a.Get("assertion").String(),
				Failed: failed,
				Error:  msg,
			})
			return true
		})
		out = append(out, e)
		return true
	})
	return out, nil
}

// ReadReport reads and parses a report file.
func ReadReport(path string) ([]Execution, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoReport, path)
		}
		return nil, fmt.Errorf("failed to read runner report: %w", err)
	}
	return ParseReport(data)
}

// reportURL renders the request URL of a report entry, which newman writes
// either as a string or as a URL object.
func reportURL(u gjson.Result) string {
	if !u.IsObject() {
		return u.String()
	}
	if raw := u.Get("raw"); raw.Exists() {
		return raw.String()
	}

	var b strings.Builder
	if p := u.Get("protocol").String(); p != "" {
		b.WriteString(p + "://")
	}
	var host []string
	for _, h := range u.Get("host").Array() {
		host = append(host, h.String())
	}
	b.WriteString(strings.Join(host, "."))
	if port := u.Get("port").String(); port != "" {
		b.WriteString(":" + port)
	}
	for _, p := range u.Get("path").Array() {
		b.WriteString("/" + p.String())
	}
	var query []string
	for _, q := range u.Get("query").Array() {
		if q.Get("disabled").Bool() {
			continue
		}
		query = append(query, q.Get("key").String()+"="+q.Get("value").String())
	}
	if len(query) > 0 {
		b.WriteString("?" + strings.Join(query, "&"))
	}
	return b.String()
}

type reportDoc struct {
	Collection reportCollection `json:"collection"`
	Run        reportRun        `json:"run"`
}

type reportCollection struct {
	Info struct {
		Name string `json:"name"`
	} `json:"info"`
}

type reportRun struct {
	Stats      reportStats       `json:"stats"`
	Executions []reportExecution `json:"executions"`
}

type reportStats struct {
	Requests   reportCount `json:"requests"`
	Assertions reportCount `json:"assertions"`
}

type reportCount struct {
	Total  int `json:"total"`
	Failed int `json:"failed"`
}

type reportExecution struct {
	Item struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name"`
	} `json:"item"`
	Request struct {
		Method string `json:"method"`
		URL    struct {
			Raw string `json:"raw"`
		} `json:"url"`
	} `json:"request"`
	Response     *reportResponse   `json:"response,omitempty"`
	RequestError *reportError      `json:"requestError,omitempty"`
	Assertions   []reportAssertion `json:"assertions"`
}

type reportResponse struct {
	Code         int   `json:"code"`
	ResponseTime int64 `json:"responseTime"`
}

type reportAssertion struct {
	Assertion string       `json:"assertion"`
	Error     *reportError `json:"error"`
}

type reportError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// WriteReport writes executions as a newman-shaped JSON report.
func WriteReport(path, collectionName string, executions []Execution) error {
	var doc reportDoc
	doc.Collection.Info.Name = collectionName
	doc.Run.Executions = make([]reportExecution, 0, len(executions))

	for _, e := range executions {
		var re reportExecution
		re.Item.ID = e.ItemID
		re.Item.Name = e.Name
		re.Request.Method = e.Method
		re.Request.URL.Raw = e.URL
		if e.Code != nil {
			re.Response = &reportResponse{Code: *e.Code, ResponseTime: e.ResponseTime.Milliseconds()}
		}
		if e.RequestError != "" {
			re.RequestError = &reportError{Name: "Error", Message: e.RequestError}
			doc.Run.Stats.Requests.Failed++
		}
		re.Assertions = make([]reportAssertion, 0, len(e.Assertions))
		for _, a := range e.Assertions {
			ra := reportAssertion{Assertion: a.Name}
			if a.Failed {
				ra.Error = &reportError{Name: "AssertionError", Message: a.Error}
				doc.Run.Stats.Assertions.Failed++
			}
			re.Assertions = append(re.Assertions, ra)
		}
		doc.Run.Stats.Requests.Total++
		doc.Run.Stats.Assertions.Total += len(e.Assertions)
		doc.Run.Executions = append(doc.Run.Executions, re)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode runner report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write runner report: %w", err)
	}
	return nil
}
