package dictionary

var en = WordList{
	"arse",
	"ass",
	"asshole",
	"bastard",
	"bitch",
	"bollocks",
	"bullshit",
	"crap",
	"cunt",
	"damn",
	"dick",
	"dickhead",
	"douche",
	"dumbass",
	"fuck",
	"fucker",
	"fucking",
	"goddamn",
	"idiot",
	"jackass",
	"jerk",
	"moron",
	"motherfucker",
	"piss",
	"prick",
	"pussy",
	"retard",
	"scumbag",
	"shit",
	"shithead",
	"slut",
	"stupid",
	"twat",
	"wanker",
	"whore",
}
