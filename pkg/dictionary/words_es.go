package dictionary

var es = WordList{
	"boludo",
	"boluda",
	"cabrón",
	"cabrona",
	"carajo",
	"cojones",
	"coño",
	"culero",
	"estúpido",
	"estúpida",
	"gilipollas",
	"hostia",
	"huevón",
	"idiota",
	"imbécil",
	"joder",
	"jodido",
	"malparido",
	"marica",
	"mamón",
	"mierda",
	"pendejo",
	"pendeja",
	"pinche",
	"puta",
	"puto",
	"tarado",
	"zorra",
}
