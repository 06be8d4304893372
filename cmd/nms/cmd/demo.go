package cmd

// demoScript is the built-in two-scene script --demo runs in place of a
// file argument, self-contained so it needs no .nms file on disk. It
// exercises Say, Choice, Set, and Transition, enough to smoke-test an
// embedder integration end to end.
const demoScript = `
character hero(name="Hero", color="#66ccff")

scene intro {
	transition fade 0.5
	set affection = 0
	hero "Welcome to the demo."
	choice {
		"Say hello" -> goto greeted
		"Stay quiet" -> goto quiet
	}
}

scene greeted {
	set affection = affection + 1
	hero "Glad you said something."
	say "The end."
}

scene quiet {
	hero "Suit yourself."
	say "The end."
}
`
