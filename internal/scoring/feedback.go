package scoring

import (
	"fmt"
	"strings"
)

// CriterionFeedback is the structured feedback record for one criterion.
type CriterionFeedback struct {
	Criterion   Criterion `json:"criterion"`
	Band        Band      `json:"band"`
	Descriptor  string    `json:"descriptor"`
	Strengths   []string  `json:"strengths"`
	Weaknesses  []string  `json:"weaknesses"`
	Suggestions []string  `json:"suggestions"`
}

// OverallFeedback summarizes the whole performance and targets the single
// weakest criterion with next-band advice.
type OverallFeedback struct {
	Band         Band     `json:"band"`
	Summary      string   `json:"summary"`
	NextBandTips []string `json:"next_band_tips"`
}

// FeedbackReport is the full regenerable feedback structure: a pure function
// of the bands, metrics and findings, so identical inputs always produce
// identical text.
type FeedbackReport struct {
	Criteria []CriterionFeedback `json:"criteria"`
	Overall  OverallFeedback     `json:"overall"`
}

// descriptors holds the canonical per-band descriptor text, keyed by
// criterion and rounded band. Immutable configuration.
var descriptors = map[Criterion]map[Band]string{
	FluencyCoherence: {
		9.0: "Speaks fluently with only rare, content-related hesitation; speech is fully coherent and effortlessly connected.",
		8.5: "Speaks fluently with very occasional hesitation; ideas are developed coherently with effective discourse markers.",
		8.0: "Speaks at length without noticeable effort; occasional hesitation is content-related rather than language-related.",
		7.5: "Speaks at length with some language-related hesitation; coherence is maintained across extended turns.",
		7.0: "Maintains a steady flow of speech, though some hesitation, repetition or self-correction is present.",
		6.5: "Generally willing to speak at length, though pausing and occasional repetition reduce the flow.",
		6.0: "Keeps going despite noticeable hesitation; repetition and self-correction interrupt longer stretches of speech.",
		5.5: "Relies on pausing, repetition and slow speech to keep going; flow breaks down in longer turns.",
		5.0: "Frequent pausing and repetition make speech slow and effortful; coherence is limited to short turns.",
	},
	Pronunciation: {
		9.0: "Pronunciation is effortless to understand throughout; the clarity signal shows virtually no degraded words.",
		8.5: "Consistently clear and easy to follow; only isolated words show reduced clarity.",
		8.0: "Easy to understand throughout; occasional unclear words do not affect intelligibility.",
		7.5: "Generally clear with good intelligibility; a small share of words shows reduced clarity.",
		7.0: "Mostly intelligible, though some words require listener attention to decode.",
		6.5: "Intelligible overall, but reduced clarity on a noticeable share of words causes occasional strain.",
		6.0: "Understandable with effort; unclear words interrupt the listener regularly.",
		5.5: "Clarity problems are frequent enough to cause listener strain across the sample.",
		5.0: "A large share of words is unclear; sustained listener effort is needed throughout.",
	},
	LexicalResource: {
		9.0: "Uses a wide, precise vocabulary naturally and accurately, including idiomatic language.",
		8.5: "Uses a broad vocabulary flexibly and precisely with only rare imprecision.",
		8.0: "Uses a wide range of vocabulary fluently to convey precise meaning; occasional inaccuracies only.",
		7.5: "Shows flexible vocabulary use with some less common and idiomatic items.",
		7.0: "Uses vocabulary resource flexibly to discuss a variety of topics; some word-choice errors remain.",
		6.5: "Has enough vocabulary for extended discussion, though word choice is sometimes imprecise.",
		6.0: "Has a sufficient working vocabulary, but limited range forces frequent paraphrase and repetition.",
		5.5: "Vocabulary is adequate for familiar topics only; range limits precision elsewhere.",
		5.0: "Limited vocabulary restricts discussion to basic, familiar ground.",
	},
	GrammaticalRangeAccuracy: {
		9.0: "Uses a full range of structures naturally and accurately; errors are rare and minor.",
		8.5: "Uses a wide range of structures with high accuracy; only occasional minor slips.",
		8.0: "Uses a wide range of structures flexibly; most sentences are error-free.",
		7.5: "Uses a range of complex structures with good control; errors persist but rarely obscure meaning.",
		7.0: "Uses a mix of simple and complex structures with reasonable accuracy.",
		6.5: "Attempts complex structures with mixed success; errors occasionally reduce clarity.",
		6.0: "Relies mainly on simple structures; errors are frequent in more complex attempts.",
		5.5: "Produces mostly short, simple structures; errors are frequent and sometimes obscure meaning.",
		5.0: "Basic structures dominate and errors are frequent enough to strain communication.",
	},
}

// BuildFeedback assembles the descriptor text and the per-criterion
// strength/weakness/suggestion bullets, then the overall summary targeting
// the weakest criterion.
func BuildFeedback(scores CriterionScores, overall Band, m SpeechMetrics, f *LLMFindings, transcript string) FeedbackReport {
	report := FeedbackReport{
		Criteria: []CriterionFeedback{
			fluencyFeedback(scores.FluencyCoherence, m, f),
			pronunciationFeedback(scores.Pronunciation, m),
			lexicalFeedback(scores.LexicalResource, m, f),
			grammarFeedback(scores.GrammaticalRangeAccuracy, f),
		},
		Overall: overallFeedback(scores, overall, transcript),
	}
	return report
}

func descriptorFor(cr Criterion, band Band) string {
	b := clampBand(roundHalf(float64(band)))
	return descriptors[cr][b]
}

func fluencyFeedback(band Band, m SpeechMetrics, f *LLMFindings) CriterionFeedback {
	fb := CriterionFeedback{
		Criterion:  FluencyCoherence,
		Band:       band,
		Descriptor: descriptorFor(FluencyCoherence, band),
	}
	if f != nil && f.CoherenceBreakCount > 0 {
		fb.Descriptor += fmt.Sprintf(" %d coherence breaks detected.", f.CoherenceBreakCount)
	}

	if band >= 8.0 {
		fb.Strengths = append(fb.Strengths,
			fmt.Sprintf("strong speaking pace at %.0f words per minute", m.WPM),
			"long pauses are rare and hesitation does not interrupt the flow")
	} else if band >= 7.0 {
		fb.Strengths = append(fb.Strengths, "maintains extended speech with a mostly steady pace")
	}

	if band < 6.0 {
		if m.WPM < 70 {
			fb.Weaknesses = append(fb.Weaknesses, fmt.Sprintf("speaking pace of %.0f words per minute is below a conversational rate", m.WPM))
		}
		if m.LongPausesPerMin >= 3.0 {
			fb.Weaknesses = append(fb.Weaknesses, fmt.Sprintf("%.1f long pauses per minute break up the flow", m.LongPausesPerMin))
		}
		if m.PauseVariability >= 1.3 {
			fb.Weaknesses = append(fb.Weaknesses, "pause lengths vary widely, which suggests frequent word searching")
		}
		if len(fb.Weaknesses) == 0 {
			fb.Weaknesses = append(fb.Weaknesses, "hesitation and repetition keep the flow below a comfortable conversational level")
		}
	} else if band < 7.0 && m.LongPausesPerMin > 2.0 {
		fb.Weaknesses = append(fb.Weaknesses, fmt.Sprintf("%.1f long pauses per minute still interrupt longer turns", m.LongPausesPerMin))
	}

	if m.FillersPerMin > 4 {
		fb.Suggestions = append(fb.Suggestions, fmt.Sprintf("reduce filler words (%.0f per minute); pause silently instead of vocalizing hesitation", m.FillersPerMin))
	}
	if band < 7.0 {
		fb.Suggestions = append(fb.Suggestions, "practice speaking on a timer without stopping; aim for two minutes of continuous speech per topic")
	}
	if m.RepetitionRatio > 0.05 {
		fb.Suggestions = append(fb.Suggestions, "rephrase instead of repeating; restarting a sentence costs more than finishing it imperfectly")
	}
	return fb
}

func pronunciationFeedback(band Band, m SpeechMetrics) CriterionFeedback {
	fb := CriterionFeedback{
		Criterion:  Pronunciation,
		Band:       band,
		Descriptor: descriptorFor(Pronunciation, band),
	}
	if m.LowConfidenceRatio > 0 {
		fb.Descriptor += fmt.Sprintf(" %.0f%% of words show low recognition confidence.", m.LowConfidenceRatio*100)
	}

	if band >= 8.0 {
		fb.Strengths = append(fb.Strengths,
			"speech is consistently clear to an automatic recognizer, a strong proxy for listener ease",
			fmt.Sprintf("mean word clarity of %.2f is in the highest range", m.MeanWordConfidence))
	} else if band >= 7.0 {
		fb.Strengths = append(fb.Strengths, "intelligibility is good across most of the sample")
	}

	if band < 6.0 {
		fb.Weaknesses = append(fb.Weaknesses,
			fmt.Sprintf("%.0f%% of words fall below the clarity threshold, forcing the listener to fill gaps", m.LowConfidenceRatio*100))
	}
	// The monotone flag shapes feedback only; the band itself is purely
	// acoustic to avoid double-penalizing.
	if m.IsMonotone {
		fb.Weaknesses = append(fb.Weaknesses, "delivery is monotone; flat intonation makes sustained listening harder")
		fb.Suggestions = append(fb.Suggestions, "practice reading aloud with exaggerated intonation, then dial it back to a natural range")
	}
	if band < 7.0 {
		fb.Suggestions = append(fb.Suggestions, "record yourself and compare against a clear reference speaker, focusing on the words a recognizer mis-hears")
	}
	return fb
}

func lexicalFeedback(band Band, m SpeechMetrics, f *LLMFindings) CriterionFeedback {
	fb := CriterionFeedback{
		Criterion:  LexicalResource,
		Band:       band,
		Descriptor: descriptorFor(LexicalResource, band),
	}
	if f != nil {
		if f.AdvancedVocabularyCount > 0 {
			fb.Descriptor += fmt.Sprintf(" %d advanced vocabulary items identified.", f.AdvancedVocabularyCount)
		}
		if f.WordChoiceErrorCount > 0 {
			fb.Descriptor += fmt.Sprintf(" %d word-choice errors noted.", f.WordChoiceErrorCount)
		}
	}

	if band >= 8.0 {
		fb.Strengths = append(fb.Strengths,
			fmt.Sprintf("high vocabulary diversity (richness %.2f) across %d unique words", m.VocabRichness, m.UniqueWordCount),
			"word choice is precise enough to carry meaning without paraphrase")
	} else if band >= 7.0 {
		fb.Strengths = append(fb.Strengths, "vocabulary range comfortably supports extended discussion")
	}
	if f != nil && f.IdiomaticCollocationCount >= 3 && f.RegisterMismatchCount == 0 {
		fb.Strengths = append(fb.Strengths, "natural idiomatic collocations used with a consistent register")
	}

	if band < 6.0 {
		if m.VocabRichness < 0.37 {
			fb.Weaknesses = append(fb.Weaknesses, fmt.Sprintf("vocabulary diversity (richness %.2f) is low; the same words carry too much of the load", m.VocabRichness))
		}
		if m.LexicalDensity < 0.35 {
			fb.Weaknesses = append(fb.Weaknesses, "a high share of function words leaves little room for content-bearing vocabulary")
		}
		if len(fb.Weaknesses) == 0 {
			fb.Weaknesses = append(fb.Weaknesses, "vocabulary range limits precision outside familiar topics")
		}
	}
	if f != nil && f.RegisterMismatchCount >= 2 {
		fb.Weaknesses = append(fb.Weaknesses, fmt.Sprintf("%d register mismatches; formal and informal choices are mixed", f.RegisterMismatchCount))
	}

	if band < 7.0 {
		fb.Suggestions = append(fb.Suggestions, "learn vocabulary in collocations rather than single words; it raises both range and precision")
	}
	if f != nil && f.WordChoiceErrorCount > 0 {
		fb.Suggestions = append(fb.Suggestions, "keep a list of corrected word-choice errors and recycle the corrections in your next practice session")
	}
	return fb
}

func grammarFeedback(band Band, f *LLMFindings) CriterionFeedback {
	fb := CriterionFeedback{
		Criterion:  GrammaticalRangeAccuracy,
		Band:       band,
		Descriptor: descriptorFor(GrammaticalRangeAccuracy, band),
	}
	if f != nil {
		if f.GrammarErrorCount > 0 {
			fb.Descriptor += fmt.Sprintf(" %d grammar errors identified.", f.GrammarErrorCount)
		}
		if ratio, ok := f.ComplexAccuracyRatio(); ok {
			fb.Descriptor += fmt.Sprintf(" %d of %d complex structures accurate (%.0f%%).",
				f.ComplexStructuresAccurate, f.ComplexStructuresAttempted, ratio*100)
		}
	}

	if band >= 8.0 {
		fb.Strengths = append(fb.Strengths,
			"complex structures are produced with consistent accuracy",
			"errors are rare enough that the listener never has to reconstruct meaning")
	} else if band >= 7.0 {
		fb.Strengths = append(fb.Strengths, "a solid mix of simple and complex structures with workable accuracy")
	}

	if band < 6.0 {
		fb.Weaknesses = append(fb.Weaknesses, "short, simple sentence frames dominate; complex attempts break down")
		if f != nil && f.CascadingGrammarFailure {
			fb.Weaknesses = append(fb.Weaknesses, "errors cascade across clauses once a structure goes wrong")
		}
	}
	if f != nil && f.MeaningBlockingErrorRatio >= 0.30 {
		fb.Weaknesses = append(fb.Weaknesses, fmt.Sprintf("%.0f%% of errors block meaning rather than just sounding wrong", f.MeaningBlockingErrorRatio*100))
	}

	if band < 7.0 {
		fb.Suggestions = append(fb.Suggestions, "drill one complex structure at a time (e.g. conditionals) until it is automatic before adding the next")
	}
	if f != nil && f.GrammarErrorCount >= 6 {
		fb.Suggestions = append(fb.Suggestions, "prioritize accuracy over ambition: a correct simple sentence scores better than a broken complex one")
	}
	return fb
}

// overallTiers selects the summary sentence by overall band range.
func overallSummary(overall Band) string {
	switch {
	case overall >= 8.5:
		return "An expert-level performance: fluent, precise and effortless to follow across all four criteria."
	case overall >= 7.5:
		return "A very good performance with full operational command; remaining issues are occasional and rarely reduce clarity."
	case overall >= 6.5:
		return "A competent performance: communication is effective despite noticeable inaccuracies and occasional strain."
	case overall >= 6.0:
		return "A modest-to-competent performance: meaning is conveyed, but errors and hesitation are frequent enough to need attention."
	default:
		return "A limited performance: basic communication succeeds on familiar ground, but breakdowns are frequent."
	}
}

var nextBandTips = map[Criterion][]string{
	FluencyCoherence: {
		"extend answers past the first sentence: state the point, give a reason, then an example",
		"link ideas with a wider range of connectives than 'and', 'but' and 'so'",
	},
	Pronunciation: {
		"work on the specific sounds that recognition flags as unclear rather than accent in general",
		"slow down slightly on content words; clarity beats speed for this criterion",
	},
	LexicalResource: {
		"replace the ten words you over-use with precise alternatives learned in context",
		"practice paraphrasing the same idea three different ways",
	},
	GrammaticalRangeAccuracy: {
		"add one complex structure per answer and self-check it before moving on",
		"review your most frequent error type weekly until it disappears from recordings",
	},
}

func overallFeedback(scores CriterionScores, overall Band, transcript string) OverallFeedback {
	weakest, weakestBand := scores.Weakest()
	summary := overallSummary(overall)
	summary += fmt.Sprintf(" The weakest area is %s at band %.1f.", criterionLabel(weakest), float64(weakestBand))
	if len(strings.Fields(transcript)) > 0 && len(strings.Fields(transcript)) < 40 {
		summary += " The response was very short; longer answers would give a firmer basis for every criterion."
	}
	return OverallFeedback{
		Band:         overall,
		Summary:      summary,
		NextBandTips: nextBandTips[weakest],
	}
}

func criterionLabel(cr Criterion) string {
	switch cr {
	case FluencyCoherence:
		return "Fluency & Coherence"
	case Pronunciation:
		return "Pronunciation"
	case LexicalResource:
		return "Lexical Resource"
	case GrammaticalRangeAccuracy:
		return "Grammatical Range & Accuracy"
	}
	return string(cr)
}
