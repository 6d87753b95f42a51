// Package grading turns detected bubbles into graded answers.
//
// Grade composes the full pipeline:
//
//  1. imaging.Binarize produces a two-valued mask with ink as foreground.
//  2. detection.FindMarks keeps the regions shaped like bubbles.
//  3. Group arranges them into questions, column by column, top to bottom,
//     each question ordered left to right.
//  4. Resolve picks the most-filled alternative of every well-formed question.
//  5. ScoreAndAnnotate compares the picks with an AnswerKey and draws the
//     feedback onto a copy of the sheet.
//
// Stages hold no state between calls. A question with the wrong number of
// bubbles is reported as unanswered rather than failing the run.
package grading
