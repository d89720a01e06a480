// File: internal/infra/web/twiml.go
package web

import (
	"encoding/xml"
)

// TwiML verbs. The provider consumes an ordered list of instructions:
// speak, listen-then-POST, redirect, hang up.

type Say struct {
	XMLName xml.Name `xml:"Say"`
	Voice   string   `xml:"voice,attr,omitempty"`
	Text    string   `xml:",chardata"`
}

type Gather struct {
	XMLName xml.Name `xml:"Gather"`
	Input   string   `xml:"input,attr"`
	Timeout int      `xml:"timeout,attr"`
	Action  string   `xml:"action,attr"`
}

type Redirect struct {
	XMLName xml.Name `xml:"Redirect"`
	URL     string   `xml:",chardata"`
}

type Hangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

// VoiceResponse is the root TwiML document. Verbs render in append order.
type VoiceResponse struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any
}

func NewVoiceResponse() *VoiceResponse {
	return &VoiceResponse{}
}

func (r *VoiceResponse) Say(text, voice string) *VoiceResponse {
	r.Verbs = append(r.Verbs, Say{Voice: voice, Text: text})
	return r
}

// GatherSpeech arms a speech-capture window of timeoutSec seconds; the
// provider POSTs the transcription to action when it closes.
func (r *VoiceResponse) GatherSpeech(timeoutSec int, action string) *VoiceResponse {
	r.Verbs = append(r.Verbs, Gather{Input: "speech", Timeout: timeoutSec, Action: action})
	return r
}

func (r *VoiceResponse) Redirect(url string) *VoiceResponse {
	r.Verbs = append(r.Verbs, Redirect{URL: url})
	return r
}

func (r *VoiceResponse) Hangup() *VoiceResponse {
	r.Verbs = append(r.Verbs, Hangup{})
	return r
}

// Render serializes the document with the XML declaration the provider
// expects.
func (r *VoiceResponse) Render() ([]byte, error) {
	body, err := xml.Marshal(r)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}
