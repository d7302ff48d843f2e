// Copyright 2022 - 2026 The DomainStat Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package report

import (
	"io"
	"strings"
	"text/template"
)

// Image is one plot image included in the overview.
type Image struct {
	// Label names the breakdown the image belongs to.
	Label string
	// Path is the image path as it should appear in the document.
	Path string
}

// VariableSection groups the images of one variable.
type VariableSection struct {
	Name   string
	Label  string
	Images []Image
}

// ModuleSection groups the variables of one module.
type ModuleSection struct {
	Name      string
	Label     string
	Variables []VariableSection
}

// Overview is the full LaTeX overview document.
type Overview struct {
	Title   string
	Modules []ModuleSection
}

// latexEscaper handles the characters that are special in LaTeX text.
var latexEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`&`, `\&`,
	`%`, `\%`,
	`$`, `\$`,
	`#`, `\#`,
	`_`, `\_`,
	`{`, `\{`,
	`}`, `\}`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
)

var overviewTemplate = template.Must(template.New("overview").
	Funcs(template.FuncMap{"esc": latexEscaper.Replace}).
	Parse(`% {{ .Title }}
% generated by domainstat, do not edit
{{ range .Modules }}
\section{{"{"}}{{ esc .Label }}{{"}"}}
{{ range .Variables }}
\subsection{{"{"}}{{ esc .Label }}{{"}"}}
{{ range .Images }}
\begin{figure}[htb]
\centering
\includegraphics{{"{"}}{{ .Path }}{{"}"}}
\caption{{"{"}}{{ esc .Label }}{{"}"}}
\end{figure}
{{ end }}{{ end }}{{ end }}`))

// WriteOverview renders the overview document to w.
func WriteOverview(w io.Writer, overview Overview) error {
	if overview.Title == "" {
		overview.Title = "Overview of internet.nl statistics"
	}
	return overviewTemplate.Execute(w, overview)
}
