package dictionary

var ptBR = WordList{
	"arrombado",
	"arrombada",
	"babaca",
	"bosta",
	"bostinha",
	"buceta",
	"cacete",
	"cagão",
	"caralho",
	"corno",
	"cretino",
	"cretina",
	"cuzão",
	"desgraçado",
	"desgraçada",
	"escroto",
	"escrota",
	"foda",
	"fodido",
	"fodida",
	"idiota",
	"imbecil",
	"otário",
	"otária",
	"merda",
	"palhaço",
	"panaca",
	"piranha",
	"porra",
	"puta",
	"puto",
	"retardado",
	"safado",
	"safada",
	"vagabundo",
	"vagabunda",
	"viado",
	"trouxa",
	"vadia",
}
