package grammar

// Rule names of the built-in grammar
const (
	RuleWS          = "WS"
	RuleGap         = "GAP"
	RuleBoundary    = "BOUNDARY"
	RuleWord        = "WORD"
	RuleName        = "NAME"
	RuleShort       = "SHORT"
	RuleLong        = "LONG"
	RuleEllipsis    = "ELLIPSIS"
	RuleUpper       = "UPPER"
	RuleAngle       = "ANGLE"
	RuleBrace       = "BRACE"
	RuleValue       = "VALUE"
	RuleOptValue    = "OPTIONAL_VALUE"
	RuleRepeatTail  = "REPEAT_TAIL"
	RuleAttached    = "ATTACHED"
	RuleSyn         = "SYN"
	RuleSep         = "SEP"
	RuleDescription = "DESCRIPTION"
	RuleTail        = "LINE_TAIL"
	RuleOptionLine  = "OPTION_LINE"
	RuleUsageGroup  = "USAGE_GROUP"
	RuleUsageParen  = "USAGE_PAREN"
	RuleUsageToken  = "USAGE_TOKEN"
	RuleEntryLine   = "ENTRY_LINE"
	RulePosName     = "POSITIONAL_NAME"
	RulePosEntry    = "POSITIONAL_LINE"
)

// Capture names produced by the built-in rules
const (
	CapShort       = "short"
	CapLong        = "long"
	CapSingle      = "single"
	CapNegatable   = "negatable"
	CapPlaceholder = "placeholder"
	CapOptional    = "optional"
	CapChoices     = "choices"
	CapEllipsis    = "ellipsis"
	CapDescription = "description"
	CapName        = "name"
	CapAlias       = "alias"
	CapGroup       = "group"
	CapParen       = "paren"
	CapFlag        = "flag"
	CapAngle       = "angle"
	CapUpper       = "upper"
	CapWord        = "word"
)

var (
	classBoundary = NewClass("[ \\t=,\\[|/<]", " \t=,[|/<")
	classLowerPh  = NewClass("[a-z0-9_-]", "_-", rangeLower, rangeDigit)
)

// defineBase adds the rules shared by every dialect.
func defineBase(g *Grammar) {
	g.Define(RuleWS, In(ClassSpace))
	g.Define(RuleGap, Seq(Choice(Lit("  "), Lit("\t"), Lit(" \t")), Star(Ref(RuleWS))))
	g.Define(RuleBoundary, And(Choice(In(classBoundary), End())))
	g.Define(RuleWord, Seq(In(ClassAlnum), Star(In(ClassWord))))
	g.Define(RuleName, Seq(In(ClassAlnum), Star(In(ClassNameTail))))

	g.Define(RuleShort, Seq(Lit("-"), In(ClassShortName), Ref(RuleBoundary)))
	g.Define(RuleLong, Seq(
		Lit("--"),
		Opt(Cap(CapNegatable, Lit("[no-]"))),
		Ref(RuleWord),
		Star(Seq(Lit("-"), Ref(RuleWord))),
		Ref(RuleBoundary),
	))

	g.Define(RuleEllipsis, Seq(Opt(Lit(" ")), Choice(Lit("..."), Lit("…"))))
	g.Define(RuleUpper, Seq(In(ClassUpper), Star(In(ClassUpperTail)), Not(In(ClassLower))))
	g.Define(RuleAngle, Seq(Lit("<"), Until(Lit(">")), Lit(">")))
	g.Define(RuleBrace, Seq(Lit("{"), Cap(CapChoices, Until(Lit("}"))), Lit("}")))

	g.Define(RuleValue, Seq(
		Cap(CapPlaceholder, Choice(Ref(RuleUpper), Ref(RuleAngle), Ref(RuleBrace))),
		Opt(Cap(CapEllipsis, Ref(RuleEllipsis))),
	))
	g.Define(RuleOptValue, Cap(CapOptional, Seq(
		Lit("["), Opt(Lit("=")), Star(Ref(RuleWS)),
		Ref(RuleValue),
		Star(Ref(RuleWS)), Lit("]"),
	)))
	// argparse nargs='+': "--in FILE [FILE ...]"
	g.Define(RuleRepeatTail, Cap(CapEllipsis, Seq(
		Lit(" ["), Choice(Ref(RuleUpper), Ref(RuleAngle)), Ref(RuleEllipsis), Lit("]"),
	)))
	g.Define(RuleAttached, Choice(
		Seq(Lit("="), Choice(
			Ref(RuleValue),
			Cap(CapPlaceholder, Seq(In(ClassLower), Star(In(classLowerPh)))),
		), Opt(Ref(RuleRepeatTail))),
		Ref(RuleOptValue),
		Seq(Lit(" "), Ref(RuleOptValue)),
		Seq(Lit(" "), Ref(RuleValue), Opt(Ref(RuleRepeatTail))),
	))

	g.Define(RuleSyn, Choice(
		Seq(Cap(CapLong, Ref(RuleLong)), Opt(Ref(RuleAttached))),
		Seq(Cap(CapShort, Ref(RuleShort)), Opt(Ref(RuleAttached))),
	))
	g.Define(RuleSep, Choice(
		Seq(Lit(","), Star(Ref(RuleWS))),
		Seq(Star(Ref(RuleWS)), Lit("|"), Star(Ref(RuleWS))),
		Lit("/"),
		Seq(Lit(" "), And(Lit("-"))),
	))
	g.Define(RuleDescription, Cap(CapDescription, Plus(Any())))
	g.Define(RuleTail, Choice(
		Seq(Ref(RuleGap), Ref(RuleDescription)),
		Seq(Star(Ref(RuleWS)), End()),
	))
}

// defineUsage adds the synopsis tokenizer rules.
func defineUsage(g *Grammar) {
	g.Define(RuleUsageGroup, Seq(
		Lit("["),
		Star(Choice(Ref(RuleUsageGroup), Seq(Not(Lit("]")), Any()))),
		Lit("]"),
	))
	g.Define(RuleUsageParen, Seq(
		Lit("("),
		Star(Choice(Ref(RuleUsageParen), Seq(Not(Lit(")")), Any()))),
		Lit(")"),
	))
	notSpace := Seq(Not(Ref(RuleWS)), Any())
	g.Define(RuleUsageToken, Seq(
		Star(Ref(RuleWS)),
		Choice(
			Seq(Cap(CapGroup, Ref(RuleUsageGroup)), Opt(Cap(CapEllipsis, Ref(RuleEllipsis)))),
			Cap(CapParen, Ref(RuleUsageParen)),
			Cap(CapFlag, Seq(Lit("-"), Star(notSpace))),
			Seq(Cap(CapAngle, Ref(RuleAngle)), Opt(Cap(CapEllipsis, Ref(RuleEllipsis)))),
			Seq(Cap(CapUpper, Ref(RuleUpper)), Opt(Cap(CapEllipsis, Ref(RuleEllipsis)))),
			Ref(RuleBrace),
			Cap(CapWord, Plus(notSpace)),
		),
	))
}

// defineEntries adds the subcommand and positional entry rules.
func defineEntries(g *Grammar) {
	g.Define(RuleEntryLine, Seq(
		Star(Ref(RuleWS)),
		Choice(
			Seq(
				Cap(CapName, Ref(RuleName)),
				Star(Seq(Lit(","), Star(Ref(RuleWS)), Cap(CapAlias, Ref(RuleName)))),
			),
			Cap(CapGroup, Ref(RuleBrace)),
		),
		Ref(RuleTail),
	))

	bracketed := Seq(Lit("["), Until(Lit("]")), Lit("]"))
	placeholderName := Seq(
		Cap(CapName, Choice(Ref(RuleAngle), bracketed, Ref(RuleUpper))),
		Opt(Cap(CapEllipsis, Ref(RuleEllipsis))),
	)
	g.Define(RulePosName, Choice(
		placeholderName,
		Seq(Cap(CapName, Ref(RuleName)), Opt(Cap(CapEllipsis, Ref(RuleEllipsis)))),
	))
	g.Define(RulePosEntry, Seq(
		Star(Ref(RuleWS)),
		Ref(RulePosName),
		Star(Seq(Lit(" "), placeholderName)),
		Ref(RuleTail),
	))
}

// defineOptionLine ties the registered dialects together as an ordered choice.
func defineOptionLine(g *Grammar, dialects []Dialect) {
	alts := make([]*Node, 0, len(dialects))
	for _, d := range dialects {
		alts = append(alts, Ref(d.Rule()))
	}
	g.Define(RuleOptionLine, Choice(alts...))
}
