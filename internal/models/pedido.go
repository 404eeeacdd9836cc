package models

// Pedido is one row of a user's submission history, shaped for display.
// Column names match the original portal's table headers.
type Pedido struct {
	Servico   string `json:"Serviço"`
	DataHora  string `json:"Data/Hora"`
	Descricao string `json:"Descrição"`
	Arquivos  int    `json:"Arquivos"`
	Pasta     string `json:"Pasta"`
}
