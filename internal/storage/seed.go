package storage

// seedStatements populate a freshly created ledger with the default banks
// and categories. They run once, as a single batch.
var seedStatements = []string{
	`INSERT INTO banks (bank_name, logo_url) VALUES
    ('Bancolombia', 'https://res.cloudinary.com/stkv2/image/upload/v1735163181/banks/bwbo3c6g1qsjistcgmgq.png'),
    ('BBVA', 'https://res.cloudinary.com/stkv2/image/upload/v1736112133/banks/vvvkpz2oxgzkrygile0r.png'),
    ('Bogota', 'https://res.cloudinary.com/stkv2/image/upload/v1736112133/banks/nppltf8dgg4tvfjkqiyj.png'),
    ('Cash', 'https://res.cloudinary.com/stkv2/image/upload/v1735163181/banks/hpb1twaaan4sb5kxupz2.png'),
    ('Davivienda', 'https://res.cloudinary.com/stkv2/image/upload/v1736112125/banks/byaysih3bfmhyveasyrg.png'),
    ('Global66', 'https://res.cloudinary.com/stkv2/image/upload/v1735163181/banks/eibkudsc6prz4du3jzxn.png'),
    ('Nequi', 'https://res.cloudinary.com/stkv2/image/upload/v1735163181/banks/wxbpieywd8xo9ynhgcbt.png'),
    ('NuBank', 'https://res.cloudinary.com/stkv2/image/upload/v1735163181/banks/zitxlmfeongnfm0kejss.png')`,
	`INSERT INTO categories (category_name, category_type) VALUES
    ('Food', 'Expense'),
    ('Clothes', 'Expense'),
    ('House Bills', 'Expense'),
    ('Debt Repayments', 'Expense'),
    ('Self Hygiene', 'Expense'),
    ('Transport', 'Expense'),
    ('Subscriptions', 'Expense'),
    ('Tech', 'Expense'),
    ('Utilities', 'Expense'),
    ('Other', 'Expense'),
    ('Salary', 'Income'),
    ('Side Hustle', 'Income'),
    ('Gifts', 'Income'),
    ('Miscellaneous', 'Income')`,
}
