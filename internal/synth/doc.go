// Package synth repairs the tempo and duration of generated songs and limits repeated artists.
//
// Language models often omit BPM or invent values outside the requested band. [Synthesizer.CorrectBPM]
// fills the gaps with values that drift upward across the playlist, follow a gentle wave and avoid
// repeating a tempo when a nearby free value exists. [EnforceArtistDiversity] drops songs once an
// artist reaches its cap. [CorrectPlaylistBPM] runs both.
//
// Every function returns new slices; inputs are never modified.
package synth
