// Package chart renders the two dashboard views as PNG or SVG images.
//
// Summary draws the success-ratio view as a pie chart and Scatter draws the
// payload-vs-outcome projection with one series per color key. Views with
// nothing to draw return ErrEmpty; the API maps that to 204 No Content.
package chart
