// Package junit serializes test reports in the JUnit XML dialect understood
// by GitLab CI and most report viewers.
package junit

import (
	"encoding/xml"
)

// Testsuites is the document root, aggregating every suite of a run.
type Testsuites struct {
	XMLName  xml.Name    `xml:"testsuites"`
	Tests    int         `xml:"tests,attr"`
	Failures int         `xml:"failures,attr"`
	Errors   int         `xml:"errors,attr"`
	Time     string      `xml:"time,attr"`
	Suites   []Testsuite `xml:"testsuite"`
}

type Testsuite struct {
	XMLName    xml.Name    `xml:"testsuite"`
	Name       string      `xml:"name,attr"`
	Tests      int         `xml:"tests,attr"`
	Failures   int         `xml:"failures,attr"`
	Errors     int         `xml:"errors,attr"`
	Skipped    int         `xml:"skipped,attr"`
	Time       string      `xml:"time,attr"`
	Timestamp  string      `xml:"timestamp,attr"`
	Properties *Properties `xml:"properties,omitempty"`
	TestCases  []TestCase  `xml:"testcase"`
}

// Properties wraps the property list in its own element. encoding/xml
// ignores omitempty on nested "properties>property" field tags and would
// stamp an empty <properties></properties> on every suite without one.
type Properties struct {
	Props []Property `xml:"property"`
}

type Property struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type TestCase struct {
	XMLName   xml.Name `xml:"testcase"`
	ClassName string   `xml:"classname,attr,omitempty"`
	Name      string   `xml:"name,attr"`
	Time      string   `xml:"time,attr"`
	Failure   *Failure `xml:"failure,omitempty"`
	Skipped   *Skipped `xml:"skipped,omitempty"`
	SystemOut string   `xml:"system-out,omitempty"`
	SystemErr string   `xml:"system-err,omitempty"`
}

// Failure carries the failure summary as attributes, the captured output
// lives in the sibling system-out and system-err elements.
type Failure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
}

// Skipped marks a case that the runner ignored.
type Skipped struct{}
