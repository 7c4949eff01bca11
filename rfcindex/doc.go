/*
	rfcindex package parses the flat-text RFC index document. The index is a
	UTF-8 text file in which:
		- the first real entry starts at the first occurrence of "0001".
		- entries are separated by a blank line ("\n\n").
		- each entry starts with "<number> <title start>".
		- titles continue onto following lines prefixed by a newline and
		  exactly five spaces.

	Two parsing modes are provided. ParseIndex and ParseHeaders serve callers
	that only need a listing of the index and want malformed entries reported.
	The ingest package walks the same blocks leniently and skips entries whose
	header cannot be parsed.
*/

package rfcindex
