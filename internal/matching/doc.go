// Package matching scores catalog candidates against AI-generated song descriptions.
//
// # Text Normalization
//
// [NormalizeTokens] lower-cases and tokenizes a title, dropping stopwords unless the token is also a
// style or mood term. [IsRemix] and [ExtractRemixer] detect alternate versions and pull the remixer
// label out of the qualifier text.
//
// # Context Extraction
//
// [ExtractContext] classifies a title against fixed keyword tables into a [models.StyleContext] and a
// [models.MoodContext]. Table order matters: the last matching mood wins.
//
// # Scoring
//
// [Similarity] is a normalized edit-distance ratio. A candidate's composite score is
//
//	0.35*title + 0.35*artist + 0.20*remix + 0.10*context
//
// where artist is the best similarity across the candidate's artists.
//
// # Selection
//
// [SelectBest] applies popularity bounds, the optional exact-match requirement and the similarity
// floor, and keeps the first candidate with the highest score.
package matching
