// Package onboarding drives the intake questions and the three first-time
// tasks that come before daily moves.
package onboarding

import "github.com/sandeepkv93/leap/internal/model"

type Option struct {
	ID          string
	Text        string
	Description string
}

var CategoryOptions = []Option{
	{ID: string(model.CategoryTravel), Text: "✈️ that solo trip I keep saying next year"},
	{ID: string(model.CategoryWorth), Text: "💰 finally asking for what I'm worth"},
	{ID: string(model.CategoryLaunch), Text: "🚀 launching the thing I've been planning"},
	{ID: string(model.CategoryGrowth), Text: "🌱 becoming that version of me I keep manifesting"},
}

var BlockerOptions = []Option{
	{ID: "research", Text: "📱 I research for months aka scroll"},
	{ID: "scared", Text: "🫣 honestly? the thought of starting scares me"},
	{ID: "lost", Text: "🤷‍♀️ idk where to even begin??"},
	{ID: "momentum", Text: "😤 I start hot then lose momentum by week 2"},
}

var PaceOptions = []Option{
	{ID: string(model.PaceDelusional), Text: "⚡ Delusional Confidence Mode", Description: "go all in, max moves, scare myself daily"},
	{ID: string(model.PaceSteady), Text: "🔥 Steady Stacker", Description: "consistent daily moves, momentum queen"},
	{ID: string(model.PaceFlow), Text: "🌊 Flow State", Description: "flexible, some days I sprint some I rest"},
}

func findOption(options []Option, id string) (Option, bool) {
	for _, o := range options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}
